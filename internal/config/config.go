package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds everything the client needs to reach the backend and persist
// its session.
type Config struct {
	// BaseURL is the REST API root, e.g. http://localhost:8000/api
	BaseURL string

	// StorePath is the SQLite file holding the persisted token pair.
	StorePath string

	// HTTPTimeout bounds every request round-trip.
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as an
// optional source. Missing values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load() // absent .env is fine

	return &Config{
		BaseURL:     getEnv("FINTRACK_API_URL", "http://localhost:8000/api"),
		StorePath:   getEnv("FINTRACK_STORE_PATH", defaultStorePath()),
		HTTPTimeout: getEnvDuration("FINTRACK_HTTP_TIMEOUT", 30*time.Second),
	}
}

// Validate reports configuration that can never work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("[Config.Validate] invalid FINTRACK_API_URL %q: must be an absolute http(s) URL", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("[Config.Validate] invalid FINTRACK_API_URL scheme %q", u.Scheme)
	}
	if c.StorePath == "" {
		return errors.New("[Config.Validate] FINTRACK_STORE_PATH must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("[Config.Validate] FINTRACK_HTTP_TIMEOUT must be positive")
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fintrack/session.db"
	}
	return filepath.Join(dir, "fintrack", "session.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
