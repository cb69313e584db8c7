package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
	"telicommunity-go/internal/config"
	"telicommunity-go/internal/db"
	admindomain "telicommunity-go/internal/domain/admins"
	bookingsdomain "telicommunity-go/internal/domain/bookings"
	notificationsdomain "telicommunity-go/internal/domain/notifications"
	profilesdomain "telicommunity-go/internal/domain/profiles"
	realtimedomain "telicommunity-go/internal/domain/realtime"
	"telicommunity-go/internal/mq"
	"telicommunity-go/internal/repository/inmemory"
	adminsrepo "telicommunity-go/internal/repository/postgres/admins"
	bookingsrepo "telicommunity-go/internal/repository/postgres/bookings"
	profilesrepo "telicommunity-go/internal/repository/postgres/profiles"
	"telicommunity-go/internal/repository/postgres/realtime"
	"telicommunity-go/internal/storage/objectstore"
	"telicommunity-go/internal/supabase"
	"telicommunity-go/internal/transport/httpserver"
	"telicommunity-go/internal/transport/httpserver/handler"
	bookingshandler "telicommunity-go/internal/transport/httpserver/handler/bookings"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	notificationshandler "telicommunity-go/internal/transport/httpserver/handler/notifications"
	profileshandler "telicommunity-go/internal/transport/httpserver/handler/profiles"
	"telicommunity-go/pkg/logger"
	"telicommunity-go/pkg/obs"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	pool       *pgxpool.Pool
	hub        *realtimedomain.Hub
	listener   *realtime.Listener
	pushRelay  *notificationsdomain.Relay
	publisher  *mq.Publisher
	shutdown   func(context.Context) error

	wg sync.WaitGroup
}

type repositories struct {
	bookings bookingsdomain.Repository
	admins   admindomain.Repository
	profiles profilesdomain.Repository
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	a.shutdown, err = obs.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a.hub = realtimedomain.NewHub(cfg.Realtime.BufferSize, log.With("component", "realtime"))

	repos, err := a.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing services")
	bookings := bookingsdomain.NewService(repos.bookings)
	admins := admindomain.NewResolver(repos.admins, log.With("component", "admins"))

	avatars, err := a.initAvatarStorage(ctx)
	if err != nil {
		return nil, err
	}
	profiles := profilesdomain.NewService(repos.profiles, avatars, inmemory.NewProfileCache(), cfg.Profiles.CacheTTL)

	if err := a.initPushRelay(bookings); err != nil {
		return nil, err
	}

	supa := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.PublishableKey, cfg.Supabase.AuthTimeout)
	handlers := handler.New(
		common.New(supa, cfg.Supabase.OAuthRedirect, log),
		bookingshandler.New(bookings, admins, log),
		profileshandler.New(profiles, log),
		notificationshandler.New(a.hub, bookings, admins, log),
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, supa, admins, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)

	ok = true
	return a, nil
}

func (a *App) initRepositories(ctx context.Context) (repositories, error) {
	if a.cfg.DB.Driver == config.DriverMemory {
		a.log.Warn("app: using in-memory storage, data is lost on restart")
		profiles := inmemory.NewProfiles()
		return repositories{
			bookings: inmemory.NewBookings(profiles, a.hub),
			admins:   inmemory.NewAdmins(a.cfg.DB.MemoryAdmins...),
			profiles: profiles,
		}, nil
	}
	if a.cfg.DB.Driver != config.DriverPostgres {
		return repositories{}, fmt.Errorf("unknown DB_DRIVER %q", a.cfg.DB.Driver)
	}

	a.log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(a.cfg.DB, a.log)
	if err != nil {
		return repositories{}, err
	}
	a.db = dbConn

	if a.cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, dbConn, a.log); err != nil {
			return repositories{}, err
		}
	}

	if a.cfg.Realtime.Enabled {
		pool, err := realtime.NewPool(ctx, a.cfg.DB.GetURL())
		if err != nil {
			return repositories{}, err
		}
		a.pool = pool
		a.listener = realtime.NewListener(pool, a.cfg.Realtime.Channel, a.cfg.Realtime.RetryInterval, a.hub, a.log.With("component", "listener"))
	}

	return repositories{
		bookings: bookingsrepo.NewPostgres(dbConn),
		admins:   adminsrepo.NewPostgres(dbConn),
		profiles: profilesrepo.NewPostgres(dbConn),
	}, nil
}

// initAvatarStorage falls back to the Supabase S3 gateway. Without any
// endpoint, avatar uploads are rejected and provider avatars still work.
func (a *App) initAvatarStorage(ctx context.Context) (profilesdomain.AvatarStorage, error) {
	storageCfg := a.cfg.Storage
	base := strings.TrimRight(a.cfg.Supabase.URL, "/")
	if storageCfg.Endpoint == "" && base != "" {
		storageCfg.Endpoint = base + "/storage/v1/s3"
	}
	if storageCfg.PublicBaseURL == "" && base != "" {
		storageCfg.PublicBaseURL = base + "/storage/v1/object/public"
	}
	if storageCfg.Endpoint == "" {
		a.log.Warn("app: avatar storage disabled, no storage endpoint")
		return nil, nil
	}

	bucket, err := objectstore.New(ctx, storageCfg, storageCfg.AvatarsBucket)
	if err != nil {
		return nil, fmt.Errorf("init avatar storage: %w", err)
	}
	return bucket, nil
}

// initPushRelay hands admin and confirmation notifications to the push
// exchange when AMQP is configured.
func (a *App) initPushRelay(counter notificationsdomain.PendingCounter) error {
	if a.cfg.AMQP.URL == "" {
		return nil
	}
	publisher, err := mq.NewPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange)
	if err != nil {
		return fmt.Errorf("init amqp publisher: %w", err)
	}
	a.publisher = publisher

	log := a.log.With("component", "push")
	notifier := notificationsdomain.Multi{
		mq.NewNotifier(publisher),
		notificationsdomain.NewLogNotifier(log),
	}
	a.pushRelay = notificationsdomain.NewRelay(a.hub, counter, notifier, log)
	return nil
}

// Start runs the realtime listener and the push relay until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.listener != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.listener.Run(ctx); err != nil {
				a.log.Error("app: realtime listener stopped", "err", err)
			}
		}()
	}

	if a.pushRelay != nil {
		if err := a.pushRelay.SetAdmin(ctx, true); err != nil {
			a.log.Error("app: push relay setup failed", "err", err)
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.pushRelay.Run(ctx); err != nil {
				a.log.Error("app: push relay stopped", "err", err)
			}
		}()
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Close waits for background workers, so cancel the Start context first.
func (a *App) Close() error {
	a.wg.Wait()

	var errs []error
	if a.hub != nil {
		a.hub.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}
