package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"telicommunity-go/pkg/logger"
)

const dotenvFilename = ".env"

// LoadDotEnv is the .env step of Load on its own. A missing file is not an
// error.
func LoadDotEnv(log logger.Logger) error {
	if err := loadDotEnv(log); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// loadDotEnv applies the nearest .env found walking up from the working
// directory. Variables already present in the environment win.
func loadDotEnv(log logger.Logger) error {
	path, err := findDotEnv(dotenvFilename)
	if err != nil {
		return err
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	loaded, skipped := 0, 0
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			skipped++
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
		loaded++
	}

	log.Info("dotenv: loaded variables", "count", loaded, "path", path)
	if skipped > 0 {
		log.Info("dotenv: skipped variables already set in env", "count", skipped)
	}

	return nil
}

func findDotEnv(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
