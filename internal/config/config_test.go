package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeroCatalog/internal/catalog"
	"HeroCatalog/internal/seed"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8082", cfg.HTTP.Addr)
	assert.Equal(t, 60, cfg.HTTP.RateLimit)
	assert.Equal(t, time.Minute, cfg.HTTP.RateWindow)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, catalog.DefaultLatency(), cfg.Latency)
	assert.Equal(t, 500*time.Millisecond, cfg.View.Debounce)
	assert.Equal(t, 800*time.Millisecond, cfg.View.CreateDelay)
	assert.Equal(t, seed.KindBuiltin, cfg.Seed.Kind)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("HEROCAT_HTTP_ADDR", ":9000")
	t.Setenv("HEROCAT_LATENCY_LIST", "0s")
	t.Setenv("HEROCAT_VIEW_DEBOUNCE", "250ms")
	t.Setenv("HEROCAT_METRICS_ENABLED", "false")
	t.Setenv("HEROCAT_HTTP_ALLOWED_ORIGINS", "localhost:3000,example.com")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Zero(t, cfg.Latency.List)
	assert.Equal(t, catalog.DefaultLatency().Create, cfg.Latency.Create)
	assert.Equal(t, 250*time.Millisecond, cfg.View.Debounce)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"localhost:3000", "example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herocat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
http:
  addr: ":7000"
  rate_limit: 5
seed:
  source: yaml
  path: heroes.yaml
latency:
  search: 10ms
`), 0o600))
	t.Setenv("HEROCAT_HTTP_RATE_LIMIT", "9")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 9, cfg.HTTP.RateLimit)
	assert.Equal(t, seed.KindYAML, cfg.Seed.Kind)
	assert.Equal(t, "heroes.yaml", cfg.Seed.Path)
	assert.Equal(t, 10*time.Millisecond, cfg.Latency.Search)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(NewViper(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"yaml without path", func(c *Config) { c.Seed.Kind = seed.KindYAML }, "seed.path"},
		{"sql without dsn", func(c *Config) { c.Seed.Kind = seed.KindSQL }, "seed.dsn"},
		{"sql bad driver", func(c *Config) {
			c.Seed = seed.Source{Kind: seed.KindSQL, Driver: "oracle", DSN: "x"}
		}, `seed.driver "oracle"`},
		{"unknown source", func(c *Config) { c.Seed.Kind = "csv" }, `seed.source "csv"`},
		{"negative latency", func(c *Config) { c.Latency.Delete = -time.Second }, "latency.delete"},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"zero window", func(c *Config) { c.HTTP.RateWindow = 0 }, "http.rate_window"},
		{"zero debounce", func(c *Config) { c.View.Debounce = 0 }, "view.debounce"},
		{"negative debounce", func(c *Config) { c.View.Debounce = -time.Millisecond }, "view.debounce"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
