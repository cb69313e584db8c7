package notifications

import (
	"context"
	"time"

	notificationsdomain "telicommunity-go/internal/domain/notifications"
	"telicommunity-go/pkg/logger"
)

const (
	defaultKeepAlive  = 25 * time.Second
	defaultAdminCheck = time.Minute
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) bool
}

type Handlers struct {
	source     notificationsdomain.Source
	counter    notificationsdomain.PendingCounter
	admins     AdminChecker
	log        logger.Logger
	keepAlive  time.Duration
	adminCheck time.Duration
}

func New(source notificationsdomain.Source, counter notificationsdomain.PendingCounter, admins AdminChecker, log logger.Logger) *Handlers {
	return &Handlers{
		source:     source,
		counter:    counter,
		admins:     admins,
		log:        log,
		keepAlive:  defaultKeepAlive,
		adminCheck: defaultAdminCheck,
	}
}
