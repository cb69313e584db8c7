package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeAuth struct {
	mu        sync.Mutex
	listeners []func(AuthEvent)
	probe     chan *Session
	probeErr  error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{probe: make(chan *Session, 1)}
}

func (a *fakeAuth) GetSession(ctx context.Context) (*Session, error) {
	select {
	case sess := <-a.probe:
		return sess, a.probeErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *fakeAuth) OnAuthStateChange(fn func(AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
	return func() {}
}

func (a *fakeAuth) emit(ev AuthEvent) {
	a.mu.Lock()
	listeners := append([]func(AuthEvent){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

type checkCall struct {
	userID string
	reply  chan checkReply
}

type checkReply struct {
	has bool
	err error
}

// scriptedProfiles blocks every check until the test answers it.
type scriptedProfiles struct {
	calls chan checkCall
}

func newScriptedProfiles() *scriptedProfiles {
	return &scriptedProfiles{calls: make(chan checkCall, 8)}
}

func (p *scriptedProfiles) HasProfile(ctx context.Context, userID string) (bool, error) {
	call := checkCall{userID: userID, reply: make(chan checkReply, 1)}
	p.calls <- call
	select {
	case r := <-call.reply:
		return r.has, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *scriptedProfiles) next(t *testing.T) checkCall {
	t.Helper()
	select {
	case call := <-p.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a profile check")
		return checkCall{}
	}
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
	ch    chan Snapshot
}

func newRecorder(h *Holder) *recorder {
	r := &recorder{ch: make(chan Snapshot, 32)}
	h.Subscribe(func(s Snapshot) {
		r.mu.Lock()
		r.snaps = append(r.snaps, s)
		r.mu.Unlock()
		r.ch <- s
	})
	return r
}

func (r *recorder) waitFor(t *testing.T, match func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func (r *recorder) loadingExits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	exits := 0
	prev := StatusLoading
	for _, s := range r.snaps {
		if prev == StatusLoading && s.Status != StatusLoading {
			exits++
		}
		if s.Status == StatusLoading && prev != StatusLoading {
			exits += 100
		}
		prev = s.Status
	}
	return exits
}

func status(want Status) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Status == want && !s.ProfilePending }
}

func startHolder(t *testing.T) (*Holder, *fakeAuth, *scriptedProfiles, *recorder) {
	t.Helper()
	auth := newFakeAuth()
	profiles := newScriptedProfiles()
	h := NewHolder(auth, profiles, nil)
	rec := newRecorder(h)
	h.Start(context.Background())
	t.Cleanup(h.Close)
	return h, auth, profiles, rec
}

func TestNoSessionLeavesLoadingAsUnauthenticated(t *testing.T) {
	h, auth, _, rec := startHolder(t)
	if h.Snapshot().Status != StatusLoading {
		t.Fatalf("expected loading before the probe")
	}

	auth.probe <- nil
	rec.waitFor(t, status(StatusUnauthenticated))
	if got := rec.loadingExits(); got != 1 {
		t.Fatalf("expected loading left once, got %d", got)
	}
}

func TestLoadingWaitsForProfileCheck(t *testing.T) {
	h, auth, profiles, rec := startHolder(t)

	auth.probe <- &Session{UserID: "u-1"}
	call := profiles.next(t)
	if call.userID != "u-1" {
		t.Fatalf("expected check for u-1, got %s", call.userID)
	}
	if h.Snapshot().Status != StatusLoading {
		t.Fatalf("expected loading while the check runs, got %s", h.Snapshot().Status)
	}

	call.reply <- checkReply{has: true}
	rec.waitFor(t, status(StatusReady))
	if got := rec.loadingExits(); got != 1 {
		t.Fatalf("expected loading left once, got %d", got)
	}
}

func TestProfileCheckFailureMeansNoProfile(t *testing.T) {
	_, auth, profiles, rec := startHolder(t)

	auth.probe <- &Session{UserID: "u-1"}
	profiles.next(t).reply <- checkReply{err: errors.New("timeout")}
	rec.waitFor(t, status(StatusNoProfile))
}

func TestSignInSignOutTransitions(t *testing.T) {
	h, auth, profiles, rec := startHolder(t)
	auth.probe <- nil
	rec.waitFor(t, status(StatusUnauthenticated))

	auth.emit(AuthEvent{Kind: EventSignedIn, Session: &Session{UserID: "u-1"}})
	pending := rec.waitFor(t, func(s Snapshot) bool { return s.ProfilePending })
	if Redirect(pending, LocationSignIn) != RouteStay {
		t.Fatalf("expected to stay while the profile check is in flight")
	}
	profiles.next(t).reply <- checkReply{has: false}
	snap := rec.waitFor(t, status(StatusNoProfile))
	if Redirect(snap, LocationSignIn) != RouteSetup {
		t.Fatalf("expected redirect to setup")
	}

	refreshed, err := refreshWith(t, h, profiles, true)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.Status != StatusReady {
		t.Fatalf("expected ready after refresh, got %s", refreshed.Status)
	}

	auth.emit(AuthEvent{Kind: EventTokenRefreshed, Session: &Session{UserID: "u-1", AccessToken: "new"}})
	snap = rec.waitFor(t, func(s Snapshot) bool { return s.Session != nil && s.Session.AccessToken == "new" })
	if snap.Status != StatusReady || snap.ProfilePending {
		t.Fatalf("token refresh must not re-check the profile, got %+v", snap)
	}

	auth.emit(AuthEvent{Kind: EventSignedOut})
	snap = rec.waitFor(t, status(StatusUnauthenticated))
	if snap.Session != nil {
		t.Fatalf("expected no session")
	}
	if got := rec.loadingExits(); got != 1 {
		t.Fatalf("expected loading left once, got %d", got)
	}
}

func refreshWith(t *testing.T, h *Holder, profiles *scriptedProfiles, has bool) (Snapshot, error) {
	t.Helper()
	result := make(chan Snapshot, 1)
	errs := make(chan error, 1)
	go func() {
		snap, err := h.RefreshProfile(context.Background())
		if err != nil {
			errs <- err
			return
		}
		result <- snap
	}()
	profiles.next(t).reply <- checkReply{has: has}
	select {
	case snap := <-result:
		return snap, nil
	case err := <-errs:
		return Snapshot{}, err
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return")
		return Snapshot{}, nil
	}
}

func TestStaleProfileCheckIsIgnored(t *testing.T) {
	_, auth, profiles, rec := startHolder(t)
	auth.probe <- nil
	rec.waitFor(t, status(StatusUnauthenticated))

	auth.emit(AuthEvent{Kind: EventSignedIn, Session: &Session{UserID: "u-1"}})
	first := profiles.next(t)

	auth.emit(AuthEvent{Kind: EventSignedIn, Session: &Session{UserID: "u-2"}})
	second := profiles.next(t)

	second.reply <- checkReply{has: false}
	snap := rec.waitFor(t, status(StatusNoProfile))
	if snap.Session.UserID != "u-2" {
		t.Fatalf("expected u-2, got %s", snap.Session.UserID)
	}

	first.reply <- checkReply{has: true}
	// A later event proves the loop processed the stale answer without a change.
	auth.emit(AuthEvent{Kind: EventTokenRefreshed, Session: &Session{UserID: "u-2", AccessToken: "t2"}})
	snap = rec.waitFor(t, func(s Snapshot) bool { return s.Session != nil && s.Session.AccessToken == "t2" })
	if snap.Status != StatusNoProfile {
		t.Fatalf("stale check for u-1 leaked into u-2 state: %+v", snap)
	}
}

func TestAuthChangeBeforeProbeWins(t *testing.T) {
	h, auth, profiles, rec := startHolder(t)

	auth.emit(AuthEvent{Kind: EventSignedIn, Session: &Session{UserID: "u-1"}})
	call := profiles.next(t)
	if h.Snapshot().Status != StatusLoading {
		t.Fatalf("expected loading until the probe resolves")
	}
	call.reply <- checkReply{has: true}

	auth.probe <- nil
	snap := rec.waitFor(t, func(s Snapshot) bool { return s.Status != StatusLoading })
	if snap.Status != StatusReady || snap.Session == nil {
		t.Fatalf("expected the earlier sign-in to stand, got %+v", snap)
	}
	if got := rec.loadingExits(); got != 1 {
		t.Fatalf("expected loading left once, got %d", got)
	}
}

func TestWaitSettled(t *testing.T) {
	h, auth, _, _ := startHolder(t)
	go func() { auth.probe <- nil }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := h.WaitSettled(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", snap.Status)
	}
}
