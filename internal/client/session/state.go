package session

import (
	"context"
	"time"
)

type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusNoProfile       Status = "authenticated-no-profile"
	StatusReady           Status = "authenticated-with-profile"
)

type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthEventKind string

const (
	EventSignedIn       AuthEventKind = "SIGNED_IN"
	EventSignedOut      AuthEventKind = "SIGNED_OUT"
	EventTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
)

type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

type AuthSource interface {
	GetSession(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}

type ProfileChecker interface {
	HasProfile(ctx context.Context, userID string) (bool, error)
}

// Snapshot is an immutable view of the holder. ProfilePending is set while a
// profile check for the current session is in flight.
type Snapshot struct {
	Status         Status
	Session        *Session
	ProfilePending bool
}

func (s Snapshot) Authenticated() bool {
	return s.Session != nil
}

// state is owned by the holder loop. status is the settled status; callers
// only see it once loading has been left.
type state struct {
	status   Status
	session  *Session
	left     bool
	probed   bool
	authSeen bool
	checkSeq uint64
	checking bool
}

// checkRequest asks the loop to run a profile check for userID tagged seq.
type checkRequest struct {
	seq    uint64
	userID string
}

func (st state) visibleStatus() Status {
	if !st.left {
		return StatusLoading
	}
	return st.status
}

func (st state) snapshot() Snapshot {
	snap := Snapshot{Status: st.visibleStatus(), ProfilePending: st.checking}
	if st.session != nil {
		copied := *st.session
		snap.Session = &copied
	}
	return snap
}

// settle leaves loading once the probe has resolved and no check is running.
// It never goes back.
func (st *state) settle() {
	if !st.left && st.probed && !st.checking {
		st.left = true
	}
}

func (st *state) startCheck() *checkRequest {
	st.checkSeq++
	st.checking = true
	return &checkRequest{seq: st.checkSeq, userID: st.session.UserID}
}

func (st *state) clearSession() {
	st.session = nil
	st.checking = false
	st.checkSeq++
	st.status = StatusUnauthenticated
}

// applyProbe handles the initial GetSession result. A probe that resolves
// after an auth change is stale: the change already carries newer state.
func applyProbe(st *state, sess *Session) *checkRequest {
	defer st.settle()
	st.probed = true
	if st.authSeen {
		return nil
	}
	if sess == nil {
		st.clearSession()
		return nil
	}
	st.session = sess
	st.status = StatusNoProfile
	return st.startCheck()
}

func applyAuthChange(st *state, ev AuthEvent) *checkRequest {
	defer st.settle()
	st.authSeen = true
	if ev.Kind == EventSignedOut || ev.Session == nil {
		st.clearSession()
		return nil
	}

	sameUser := st.session != nil && st.session.UserID == ev.Session.UserID
	st.session = ev.Session
	if sameUser && ev.Kind == EventTokenRefreshed {
		return nil
	}
	if !sameUser {
		st.status = StatusNoProfile
	}
	return st.startCheck()
}

// applyProfileChecked ignores results for anything but the latest check.
func applyProfileChecked(st *state, seq uint64, hasProfile bool) bool {
	if seq != st.checkSeq || st.session == nil {
		return false
	}
	defer st.settle()
	st.checking = false
	if hasProfile {
		st.status = StatusReady
	} else {
		st.status = StatusNoProfile
	}
	return true
}
