package session

import (
	"context"
	"sync"

	"telicommunity-go/pkg/logger"
)

type probeResolved struct {
	session *Session
	err     error
}

type authChanged struct {
	event AuthEvent
}

type profileChecked struct {
	seq        uint64
	userID     string
	hasProfile bool
	err        error
}

type refreshRequested struct {
	done chan Snapshot
}

// Holder tracks the session and whether its user has a profile. One loop
// goroutine owns the state; everything else talks to it through events.
type Holder struct {
	auth     AuthSource
	profiles ProfileChecker
	log      logger.Logger

	events chan any
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.RWMutex
	snap Snapshot

	subsMu sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

func NewHolder(auth AuthSource, profiles ProfileChecker, log logger.Logger) *Holder {
	if log == nil {
		log = logger.Nop()
	}
	return &Holder{
		auth:     auth,
		profiles: profiles,
		log:      log,
		events:   make(chan any, 16),
		done:     make(chan struct{}),
		snap:     Snapshot{Status: StatusLoading},
		subs:     make(map[int]func(Snapshot)),
	}
}

// Start subscribes to auth changes, then probes the current session.
func (h *Holder) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)

	unsubscribe := h.auth.OnAuthStateChange(func(ev AuthEvent) {
		h.send(ctx, authChanged{event: ev})
	})

	go h.loop(ctx, unsubscribe)

	go func() {
		sess, err := h.auth.GetSession(ctx)
		h.send(ctx, probeResolved{session: sess, err: err})
	}()
}

// Close stops the loop and waits for it.
func (h *Holder) Close() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *Holder) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Subscribe registers fn for every published snapshot. fn runs on the loop
// goroutine and must not call back into the holder synchronously.
func (h *Holder) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.subsMu.Lock()
		defer h.subsMu.Unlock()
		delete(h.subs, id)
	}
}

// RefreshProfile re-runs the profile check for the current session and
// returns the snapshot once it has completed.
func (h *Holder) RefreshProfile(ctx context.Context) (Snapshot, error) {
	req := refreshRequested{done: make(chan Snapshot, 1)}
	select {
	case h.events <- req:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-h.done:
		return h.Snapshot(), nil
	}
	select {
	case snap := <-req.done:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-h.done:
		return h.Snapshot(), nil
	}
}

// WaitSettled blocks until loading has been left.
func (h *Holder) WaitSettled(ctx context.Context) (Snapshot, error) {
	if snap := h.Snapshot(); snap.Status != StatusLoading {
		return snap, nil
	}
	settled := make(chan Snapshot, 1)
	unsubscribe := h.Subscribe(func(snap Snapshot) {
		if snap.Status == StatusLoading {
			return
		}
		select {
		case settled <- snap:
		default:
		}
	})
	defer unsubscribe()

	if snap := h.Snapshot(); snap.Status != StatusLoading {
		return snap, nil
	}
	select {
	case snap := <-settled:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (h *Holder) send(ctx context.Context, ev any) {
	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}

func (h *Holder) loop(ctx context.Context, unsubscribe func()) {
	defer close(h.done)
	defer unsubscribe()

	var st state
	var waiters []chan Snapshot

	for {
		var ev any
		select {
		case <-ctx.Done():
			return
		case ev = <-h.events:
		}

		var check *checkRequest
		changed := true

		switch ev := ev.(type) {
		case probeResolved:
			if ev.err != nil {
				h.log.InternalError("session.probe: get session failed", ev.err)
			}
			check = applyProbe(&st, ev.session)
		case authChanged:
			h.log.Debug("session.auth_change", "event", string(ev.event.Kind), "has_session", ev.event.Session != nil)
			check = applyAuthChange(&st, ev.event)
		case profileChecked:
			hasProfile := ev.hasProfile
			if ev.err != nil {
				h.log.InternalError("session.profile_check: failed, treating as no profile", ev.err, "user_id", ev.userID)
				hasProfile = false
			}
			changed = applyProfileChecked(&st, ev.seq, hasProfile)
		case refreshRequested:
			if st.session == nil {
				ev.done <- st.snapshot()
				changed = false
				break
			}
			waiters = append(waiters, ev.done)
			check = st.startCheck()
		}

		if check != nil {
			go h.runCheck(ctx, *check)
		}
		if !changed {
			continue
		}

		snap := st.snapshot()
		h.publish(snap)
		if !snap.ProfilePending {
			for _, w := range waiters {
				w <- snap
			}
			waiters = nil
		}
	}
}

func (h *Holder) runCheck(ctx context.Context, req checkRequest) {
	hasProfile, err := h.profiles.HasProfile(ctx, req.userID)
	h.send(ctx, profileChecked{seq: req.seq, userID: req.userID, hasProfile: hasProfile, err: err})
}

func (h *Holder) publish(snap Snapshot) {
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()

	h.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
