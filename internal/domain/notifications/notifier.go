package notifications

import (
	"context"
	"errors"

	"telicommunity-go/pkg/logger"
)

type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.log.Info("notifications.notify",
		"kind", string(notification.Kind),
		"title", notification.Title,
		"body", notification.Body,
		"booking_id", notification.BookingID,
	)
	return nil
}

func (n *LogNotifier) BadgeChanged(ctx context.Context, pending int64) error {
	n.log.Debug("notifications.badge", "pending", pending)
	return nil
}

// Multi delivers to every notifier, even when some of them fail.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notification Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) BadgeChanged(ctx context.Context, pending int64) error {
	var errs []error
	for _, n := range m {
		if err := n.BadgeChanged(ctx, pending); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
