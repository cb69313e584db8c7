package mq

import (
	"context"
	"fmt"

	"telicommunity-go/internal/domain/notifications"
)

const (
	KeyBookingRequested = "notification.booking_requested"
	KeyBookingConfirmed = "notification.booking_confirmed"
	KeyBadgeUpdated     = "badge.updated"
)

type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type badgeMessage struct {
	Pending int64 `json:"pending"`
}

// Notifier hands notifications to the push worker through the broker.
type Notifier struct {
	publisher JSONPublisher
}

func NewNotifier(publisher JSONPublisher) *Notifier {
	return &Notifier{publisher: publisher}
}

func (n *Notifier) Notify(ctx context.Context, notification notifications.Notification) error {
	key, err := routingKey(notification.Kind)
	if err != nil {
		return err
	}
	if err := n.publisher.PublishJSON(ctx, key, notification); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (n *Notifier) BadgeChanged(ctx context.Context, pending int64) error {
	if err := n.publisher.PublishJSON(ctx, KeyBadgeUpdated, badgeMessage{Pending: pending}); err != nil {
		return fmt.Errorf("publish %s: %w", KeyBadgeUpdated, err)
	}
	return nil
}

func routingKey(kind notifications.Kind) (string, error) {
	switch kind {
	case notifications.KindBookingRequested:
		return KeyBookingRequested, nil
	case notifications.KindBookingConfirmed:
		return KeyBookingConfirmed, nil
	default:
		return "", fmt.Errorf("no routing key for %q", kind)
	}
}
