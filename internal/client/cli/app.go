package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"telicommunity-go/internal/client/apiclient"
	"telicommunity-go/internal/client/dashboard"
	"telicommunity-go/internal/client/session"
	"telicommunity-go/internal/supabase"
	"telicommunity-go/pkg/logger"
)

// bookingAPI is what the commands need from the server.
type bookingAPI interface {
	dashboard.API
	ListUpcoming(ctx context.Context) ([]apiclient.Booking, error)
	RequestBooking(ctx context.Context, date time.Time, title, description string) (apiclient.Booking, error)
	IsAdmin(ctx context.Context) (bool, error)
	GetProfile(ctx context.Context) (apiclient.Profile, error)
	SetupProfile(ctx context.Context, input apiclient.ProfileInput) (apiclient.Profile, error)
	OAuthURL(ctx context.Context) (string, error)
	StreamNotifications(ctx context.Context, fn func(apiclient.StreamEvent)) error
}

type authStore interface {
	SetSession(ctx context.Context, accessToken, refreshToken string) (*session.Session, error)
	SignOut(ctx context.Context) error
}

type sessionView interface {
	Snapshot() session.Snapshot
	RefreshProfile(ctx context.Context) (session.Snapshot, error)
	WaitSettled(ctx context.Context) (session.Snapshot, error)
}

type App struct {
	api       bookingAPI
	auth      authStore
	session   sessionView
	dashboard *dashboard.Dashboard
	oauthURL  func(ctx context.Context) (string, error)

	reader *bufio.Reader
	out    io.Writer
	log    logger.Logger

	closers []func()
}

// NewApp wires the session store, the session holder and the API client.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel), "text")

	supa := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.HTTPTimeout)
	if !supa.Configured() {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required")
	}

	store := supabase.NewSessionStore(supa, cfg.SessionFile, log)
	if err := store.Load(); err != nil {
		log.Warn("cli: ignoring unreadable session file", "path", cfg.SessionFile, "err", err)
	}

	api := apiclient.New(cfg.APIURL, cfg.HTTPTimeout, func(ctx context.Context) (string, error) {
		sess, err := store.GetSession(ctx)
		if err != nil || sess == nil {
			return "", err
		}
		return sess.AccessToken, nil
	})

	holder := session.NewHolder(store, api, log)
	holder.Start(ctx)

	app := &App{
		api:       api,
		auth:      store,
		session:   holder,
		dashboard: dashboard.New(api, log),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		log:       log,
		closers:   []func(){holder.Close},
	}
	app.oauthURL = func(ctx context.Context) (string, error) {
		if url, err := api.OAuthURL(ctx); err == nil && url != "" {
			return url, nil
		}
		return supa.GoogleAuthorizeURL(cfg.OAuthRedirect), nil
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if _, err := a.session.WaitSettled(ctx); err != nil {
		return
	}
	a.printf("Telicommunity. Type 'help' for commands.\n")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) Close() {
	for _, closeFn := range a.closers {
		closeFn()
	}
	a.closers = nil
}

func (a *App) status() string {
	snap := a.session.Snapshot()
	if snap.Session == nil {
		return string(snap.Status)
	}
	return snap.Session.Email
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// guard applies the redirect rules for a command shown at location and
// reports whether the command may run.
func (a *App) guard(location session.Location) bool {
	switch session.Redirect(a.session.Snapshot(), location) {
	case session.RouteSignIn:
		a.printf("Please sign in first: login\n")
		return false
	case session.RouteSetup:
		a.printf("Please finish your profile first: setup\n")
		return false
	case session.RouteHome:
		a.printf("Your profile is already set up.\n")
		return false
	}
	return true
}
