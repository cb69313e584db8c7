package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIURL        string        `envconfig:"TELI_API_URL" default:"http://localhost:8080"`
	SupabaseURL   string        `envconfig:"SUPABASE_URL"`
	SupabaseKey   string        `envconfig:"SUPABASE_PUBLISHABLE_KEY"`
	SessionFile   string        `envconfig:"TELI_SESSION_FILE"`
	HTTPTimeout   time.Duration `envconfig:"TELI_HTTP_TIMEOUT" default:"15s"`
	OAuthRedirect string        `envconfig:"OAUTH_REDIRECT" default:"telicommunity://google-auth"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"warn"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}
	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".telicommunity-session.json"
	}
	return filepath.Join(dir, "telicommunity", "session.json")
}
