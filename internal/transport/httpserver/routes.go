package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"telicommunity-go/internal/config"
	"telicommunity-go/internal/transport/httpserver/handler"
	authmw "telicommunity-go/internal/transport/httpserver/middleware"
	"telicommunity-go/pkg/logger"
)

const requestTimeout = 30 * time.Second

func NewRouter(cfg config.Config, handlers *handler.Handlers, users authmw.UserFetcher, admins authmw.AdminChecker, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	auth := authmw.NewSupabaseAuth(cfg.Supabase, users, log)

	r.Route("/api", func(r chi.Router) {
		r.With(chimw.Timeout(requestTimeout)).Get("/health", handlers.Common.Health)
		r.With(chimw.Timeout(requestTimeout)).Get("/auth/oauth-url", handlers.Common.OAuthURL)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			// Long-lived; no request timeout.
			r.Get("/notifications/stream", handlers.Notifications.Stream)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(requestTimeout))

				r.Get("/auth/me", handlers.Common.AuthMe)

				r.Get("/bookings", handlers.Bookings.ListUpcoming)
				r.Post("/bookings", handlers.Bookings.RequestBooking)

				r.Get("/profiles/me", handlers.Profiles.GetMe)
				r.Put("/profiles/me", handlers.Profiles.PutMe)

				r.Get("/admin/me", handlers.Bookings.AdminMe)

				r.Group(func(r chi.Router) {
					r.Use(authmw.RequireAdmin(admins))

					r.Get("/admin/bookings/pending", handlers.Bookings.ListPending)
					r.Post("/admin/bookings/{id}/approve", handlers.Bookings.Approve)
					r.Delete("/admin/bookings/{id}", handlers.Bookings.Reject)
					r.Get("/admin/stats", handlers.Bookings.Stats)
					r.Get("/admin/badge", handlers.Bookings.Badge)
				})
			})
		})
	})

	return r
}
