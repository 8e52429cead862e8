package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/myfintrack/fintrack-go/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()
	require.Equal(t, "http://localhost:8000/api", cfg.BaseURL)
	require.NotEmpty(t, cfg.StorePath)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FINTRACK_API_URL", "https://api.myfintrack.com/v1")
	t.Setenv("FINTRACK_HTTP_TIMEOUT", "5s")

	cfg := config.Load()
	require.Equal(t, "https://api.myfintrack.com/v1", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "relative url", mutate: func(c *config.Config) { c.BaseURL = "localhost:8000" }},
		{name: "bad scheme", mutate: func(c *config.Config) { c.BaseURL = "ftp://host/api" }},
		{name: "empty store path", mutate: func(c *config.Config) { c.StorePath = "" }},
		{name: "zero timeout", mutate: func(c *config.Config) { c.HTTPTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Load()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("FINTRACK_HTTP_TIMEOUT", "not-a-duration")
	cfg := config.Load()
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
