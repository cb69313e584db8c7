package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"telicommunity-go/pkg/logger"
)

type Config struct {
	HTTPPort    string   `split_words:"true" default:"8080"`
	Env         string   `default:"development"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8081"`
	DB          DBConfig
	Supabase    SupabaseConfig
	Storage     StorageConfig
	Realtime    RealtimeConfig
	AMQP        AMQPConfig
	Tracing     TracingConfig
	Profiles    ProfilesConfig
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DBConfig struct {
	Driver          string        `default:"postgres"`
	DSN             string
	Host            string        `default:"localhost"`
	Port            string        `default:"5432"`
	User            string        `default:"postgres"`
	Password        string        `default:"postgres"`
	Name            string        `default:"telicommunity"`
	SSLMode         string        `split_words:"true" default:"disable"`
	Timezone        string        `default:"UTC"`
	MaxOpenConns    int           `split_words:"true" default:"10"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"30m"`
	AutoMigrate     bool          `split_words:"true" default:"true"`

	// MemoryAdmins seeds the admin list when Driver is memory.
	MemoryAdmins []string `split_words:"true"`
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string        `split_words:"true"`
	JWTSecret      string        `split_words:"true"`
	AuthTimeout    time.Duration `split_words:"true" default:"5s"`
	OAuthRedirect  string        `envconfig:"OAUTH_REDIRECT" default:"telicommunity://google-auth"`
	SkipAuth       bool          `split_words:"true"`
	MockUserID     string        `split_words:"true" default:"00000000-0000-0000-0000-000000000001"`
	MockUserEmail  string        `split_words:"true"`
	MockUserName   string        `split_words:"true"`
	MockUserAvatar string        `split_words:"true"`
}

// StorageConfig points at an S3-compatible endpoint (Supabase storage exposes one).
type StorageConfig struct {
	Endpoint      string
	Region        string `default:"us-east-1"`
	AccessKey     string `split_words:"true"`
	SecretKey     string `split_words:"true"`
	AvatarsBucket string `split_words:"true" default:"avatars"`
	PublicBaseURL string `envconfig:"PUBLIC_URL"`
}

type RealtimeConfig struct {
	Enabled       bool          `default:"true"`
	Channel       string        `default:"temple_bookings_changes"`
	RetryInterval time.Duration `split_words:"true" default:"5s"`
	BufferSize    int           `split_words:"true" default:"32"`
}

type AMQPConfig struct {
	URL      string
	Exchange string `default:"telicommunity.notifications"`
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string `split_words:"true" default:"telicommunity-api"`
}

type ProfilesConfig struct {
	CacheTTL time.Duration `split_words:"true" default:"1m"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	return cfg, nil
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func (c DBConfig) GetURL() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}
