package notifications

import (
	"context"
	"sync/atomic"

	"telicommunity-go/internal/domain/bookings"
	"telicommunity-go/internal/domain/realtime"
	"telicommunity-go/pkg/logger"
)

type Source interface {
	Subscribe(filter realtime.Filter) *realtime.Subscription
}

type bookingRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Relay turns booking changes into notifications for one subscriber. All
// state is owned by the Run loop; SetAdmin only hands it a new value.
type Relay struct {
	source   Source
	counter  PendingCounter
	notifier Notifier
	log      logger.Logger

	adminCh chan bool
	badge   atomic.Int64
}

func NewRelay(source Source, counter PendingCounter, notifier Notifier, log logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		source:   source,
		counter:  counter,
		notifier: notifier,
		log:      log,
		adminCh:  make(chan bool, 1),
	}
}

// SetAdmin switches the admin feed on or off. Only the latest value counts.
func (r *Relay) SetAdmin(ctx context.Context, isAdmin bool) error {
	select {
	case <-r.adminCh:
	default:
	}
	select {
	case r.adminCh <- isAdmin:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) Badge() int64 {
	return r.badge.Load()
}

func (r *Relay) Run(ctx context.Context) error {
	general := r.source.Subscribe(realtime.Filter{
		Table: bookings.Table,
		Types: []realtime.EventType{realtime.EventUpdate},
	})
	defer general.Close()

	var admin *realtime.Subscription
	var adminEvents <-chan realtime.Event
	defer func() {
		if admin != nil {
			admin.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-general.C:
			if !ok {
				return nil
			}
			r.handleGeneral(ctx, event)

		case event, ok := <-adminEvents:
			if !ok {
				admin, adminEvents = nil, nil
				continue
			}
			r.handleAdmin(ctx, event)

		case isAdmin := <-r.adminCh:
			switch {
			case isAdmin && admin == nil:
				admin = r.source.Subscribe(realtime.Filter{Table: bookings.Table})
				adminEvents = admin.C
				r.refreshBadge(ctx)
			case !isAdmin && admin != nil:
				admin.Close()
				admin, adminEvents = nil, nil
				r.setBadge(ctx, 0)
			}
		}
	}
}

func (r *Relay) handleGeneral(ctx context.Context, event realtime.Event) {
	if event.Type != realtime.EventUpdate {
		return
	}
	var record bookingRecord
	if err := event.DecodeRecord(&record); err != nil {
		r.log.Warn("notifications.relay: bad update record", "err", err.Error())
		return
	}
	if record.Status != bookings.StatusApproved {
		return
	}
	r.notify(ctx, BookingConfirmed(record.ID, record.Title))
}

func (r *Relay) handleAdmin(ctx context.Context, event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert:
		var record bookingRecord
		if err := event.DecodeRecord(&record); err != nil {
			r.log.Warn("notifications.relay: bad insert record", "err", err.Error())
			return
		}
		if record.Status != bookings.StatusPending {
			return
		}
		r.notify(ctx, BookingRequested(record.ID, record.Title))
		r.setBadge(ctx, r.badge.Load()+1)
	case realtime.EventUpdate, realtime.EventDelete:
		r.refreshBadge(ctx)
	}
}

func (r *Relay) refreshBadge(ctx context.Context) {
	count, err := r.counter.PendingCount(ctx)
	if err != nil {
		r.log.InternalError("notifications.relay: pending count failed", err, "badge", r.badge.Load())
		return
	}
	r.setBadge(ctx, count)
}

func (r *Relay) setBadge(ctx context.Context, count int64) {
	r.badge.Store(count)
	if err := r.notifier.BadgeChanged(ctx, count); err != nil {
		r.log.InternalError("notifications.relay: badge delivery failed", err, "badge", count)
	}
}

func (r *Relay) notify(ctx context.Context, n Notification) {
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.log.InternalError("notifications.relay: delivery failed", err, "kind", string(n.Kind), "booking_id", n.BookingID)
	}
}
