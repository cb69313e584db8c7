package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	realtimedomain "telicommunity-go/internal/domain/realtime"
	"telicommunity-go/pkg/logger"
)

type Publisher interface {
	Publish(event realtimedomain.Event)
}

// Listener turns pg_notify payloads on one channel into hub events.
type Listener struct {
	pool      *pgxpool.Pool
	channel   string
	retry     time.Duration
	publisher Publisher
	log       logger.Logger

	listen func(ctx context.Context) error
}

func NewListener(pool *pgxpool.Pool, channel string, retry time.Duration, publisher Publisher, log logger.Logger) *Listener {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	l := &Listener{
		pool:      pool,
		channel:   channel,
		retry:     retry,
		publisher: publisher,
		log:       log,
	}
	l.listen = l.listenOnce
	return l
}

// NewPool opens a small pool reserved for LISTEN connections.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse listener dsn: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open listener pool: %w", err)
	}
	return pool, nil
}

// Run listens until ctx is done, reconnecting after every failure.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.InternalError("realtime.listener: connection lost", err,
			"channel", l.channel, "retry_in", l.retry.String())

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	// A LISTEN session must not go back to the pool.
	conn := pooled.Hijack()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.log.Info("realtime.listener: listening", "channel", l.channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.handle(notification.Payload)
	}
}

func (l *Listener) handle(payload string) {
	event, err := realtimedomain.DecodeEvent([]byte(payload))
	if err != nil {
		l.log.Warn("realtime.listener: skipped payload", "err", err.Error())
		return
	}
	l.publisher.Publish(event)
}
