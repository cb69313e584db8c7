package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"telicommunity-go/internal/client/apiclient"
	"telicommunity-go/pkg/logger"
)

const RejectConfirmation = "This will permanently delete the booking request and free up the slot. Continue?"

var ErrRejectCancelled = errors.New("reject cancelled")

// API is the slice of the server API the dashboard moderates through.
type API interface {
	ListPending(ctx context.Context) ([]apiclient.Booking, error)
	Stats(ctx context.Context) (apiclient.Stats, error)
	Approve(ctx context.Context, id string) (apiclient.Booking, error)
	Reject(ctx context.Context, id string) error
}

// Confirm asks the operator a yes/no question.
type Confirm func(prompt string) bool

type Dashboard struct {
	api  API
	view *PendingView
	log  logger.Logger

	mu    sync.RWMutex
	stats apiclient.Stats
	newOp func() string
}

func New(api API, log logger.Logger) *Dashboard {
	return &Dashboard{
		api:   api,
		view:  NewPendingView(),
		log:   log,
		newOp: uuid.NewString,
	}
}

func (d *Dashboard) Pending() []apiclient.Booking {
	return d.view.Items()
}

func (d *Dashboard) Stats() apiclient.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Refresh fetches the pending list and the stats.
func (d *Dashboard) Refresh(ctx context.Context) error {
	items, stats, err := d.fetch(ctx)
	if err != nil {
		return err
	}
	d.view.Replace(items)
	d.setStats(stats)
	return nil
}

func (d *Dashboard) Approve(ctx context.Context, id string) error {
	return d.moderate(ctx, "approve", id, func(ctx context.Context) error {
		_, err := d.api.Approve(ctx, id)
		return err
	})
}

// Reject deletes a pending request after the operator confirms.
func (d *Dashboard) Reject(ctx context.Context, id string, confirm Confirm) error {
	if confirm == nil || !confirm(RejectConfirmation) {
		return ErrRejectCancelled
	}
	return d.moderate(ctx, "reject", id, func(ctx context.Context) error {
		return d.api.Reject(ctx, id)
	})
}

func (d *Dashboard) moderate(ctx context.Context, action, id string, call func(context.Context) error) error {
	op := d.newOp()
	d.view.ApplyRemoval(op, id)

	if err := call(ctx); err != nil {
		d.view.Discard(op)
		if refreshErr := d.Refresh(ctx); refreshErr != nil {
			d.log.Warn("dashboard."+action+": refresh after failure", "id", id, "error", refreshErr)
		}
		return fmt.Errorf("%s %s: %w", action, id, err)
	}

	items, stats, err := d.fetch(ctx)
	if err != nil {
		d.log.Warn("dashboard."+action+": refresh failed, keeping tentative removal", "id", id, "op", op, "error", err)
		return nil
	}
	d.view.Reconcile(op, items)
	d.setStats(stats)
	return nil
}

func (d *Dashboard) fetch(ctx context.Context) ([]apiclient.Booking, apiclient.Stats, error) {
	items, err := d.api.ListPending(ctx)
	if err != nil {
		return nil, apiclient.Stats{}, fmt.Errorf("list pending: %w", err)
	}
	stats, err := d.api.Stats(ctx)
	if err != nil {
		return nil, apiclient.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return items, stats, nil
}

func (d *Dashboard) setStats(stats apiclient.Stats) {
	d.mu.Lock()
	d.stats = stats
	d.mu.Unlock()
}
