package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	notificationsdomain "telicommunity-go/internal/domain/notifications"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	"telicommunity-go/internal/transport/httpserver/middleware"
)

// sseNotifier writes relay output as server-sent events.
type sseNotifier struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

type badgeEvent struct {
	Pending int64 `json:"pending"`
}

func (s *sseNotifier) Notify(ctx context.Context, n notificationsdomain.Notification) error {
	return s.send("notification", n)
}

func (s *sseNotifier) BadgeChanged(ctx context.Context, pending int64) error {
	return s.send("badge", badgeEvent{Pending: pending})
}

func (s *sseNotifier) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseNotifier) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Stream keeps one relay per connection: booking confirmations for everyone,
// plus request alerts and the pending badge while the caller is an admin.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.log.Error("notifications.stream: response writer cannot flush")
		common.WriteError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sink := &sseNotifier{w: w, flusher: flusher}
	relay := notificationsdomain.NewRelay(h.source, h.counter, sink, h.log.With("user_id", user.ID))

	isAdmin := h.admins.IsAdmin(ctx, user.Email)
	if err := relay.SetAdmin(ctx, isAdmin); err != nil {
		return
	}
	h.log.Info("notifications.stream: connected", "user_id", user.ID, "admin", isAdmin)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.maintain(ctx, cancel, relay, sink, user.Email, isAdmin)
	}()

	if err := relay.Run(ctx); err != nil {
		h.log.InternalError("notifications.stream: relay stopped", err, "user_id", user.ID)
	}
	cancel()
	wg.Wait()
	h.log.Info("notifications.stream: disconnected", "user_id", user.ID)
}

// maintain sends keep-alives and re-resolves admin status so a revoked admin
// stops receiving the admin feed.
func (h *Handlers) maintain(ctx context.Context, cancel context.CancelFunc, relay *notificationsdomain.Relay, sink *sseNotifier, email string, isAdmin bool) {
	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()
	adminCheck := time.NewTicker(h.adminCheck)
	defer adminCheck.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if err := sink.ping(); err != nil {
				cancel()
				return
			}
		case <-adminCheck.C:
			current := h.admins.IsAdmin(ctx, email)
			if current == isAdmin {
				continue
			}
			isAdmin = current
			if err := relay.SetAdmin(ctx, isAdmin); err != nil {
				return
			}
		}
	}
}
