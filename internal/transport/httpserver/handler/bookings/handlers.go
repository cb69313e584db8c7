package bookings

import (
	"context"

	admindomain "telicommunity-go/internal/domain/admins"
	bookingsdomain "telicommunity-go/internal/domain/bookings"
	"telicommunity-go/pkg/logger"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) bool
}

type Handlers struct {
	Bookings *bookingsdomain.Service
	Admins   AdminChecker
	log      logger.Logger
}

func New(bookings *bookingsdomain.Service, admins *admindomain.Resolver, log logger.Logger) *Handlers {
	return &Handlers{
		Bookings: bookings,
		Admins:   admins,
		log:      log,
	}
}
