package handler

import (
	"telicommunity-go/internal/transport/httpserver/handler/bookings"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	"telicommunity-go/internal/transport/httpserver/handler/notifications"
	"telicommunity-go/internal/transport/httpserver/handler/profiles"
)

type Handlers struct {
	Common        *common.Handlers
	Bookings      *bookings.Handlers
	Profiles      *profiles.Handlers
	Notifications *notifications.Handlers
}

func New(common *common.Handlers, bookings *bookings.Handlers, profiles *profiles.Handlers, notifications *notifications.Handlers) *Handlers {
	return &Handlers{
		Common:        common,
		Bookings:      bookings,
		Profiles:      profiles,
		Notifications: notifications,
	}
}
