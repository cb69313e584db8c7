package httpserver

import (
	"net/http"
	"time"

	"telicommunity-go/internal/config"
)

// New leaves ReadTimeout and WriteTimeout unset: notification streams stay
// open for the whole session and are ended by the request context instead.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
