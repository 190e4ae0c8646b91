// Package config loads the service configuration from defaults, an optional
// YAML file and HEROCAT_* environment variables, in increasing precedence.
// Command-line flags bound to the viper instance win over all of them.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"HeroCatalog/internal/catalog"
	"HeroCatalog/internal/seed"
	"HeroCatalog/internal/view"
)

const EnvPrefix = "HEROCAT"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	LogLevel string          `mapstructure:"log_level"`
	HTTP     HTTPConfig      `mapstructure:"http"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Latency  catalog.Latency `mapstructure:"latency"`
	View     ViewConfig      `mapstructure:"view"`
	Seed     seed.Source     `mapstructure:"seed"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// AuthConfig guards write routes when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

type ViewConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	CreateDelay time.Duration `mapstructure:"create_delay"`
}

// NewViper returns a viper instance carrying every default and reading
// HEROCAT_<SECTION>_<KEY> from the environment.
func NewViper() *viper.Viper {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	lat := catalog.DefaultLatency()

	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":8082")
	v.SetDefault("http.rate_limit", 60)
	v.SetDefault("http.rate_window", time.Minute)
	v.SetDefault("http.allowed_origins", []string{})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.token", "")

	v.SetDefault("latency.list", lat.List)
	v.SetDefault("latency.selection", lat.Selection)
	v.SetDefault("latency.select", lat.Select)
	v.SetDefault("latency.create", lat.Create)
	v.SetDefault("latency.update", lat.Update)
	v.SetDefault("latency.delete", lat.Delete)
	v.SetDefault("latency.search", lat.Search)

	v.SetDefault("view.debounce", view.DefaultDebounce)
	v.SetDefault("view.create_delay", view.DefaultCreateDelay)

	v.SetDefault("seed.source", seed.KindBuiltin)
	v.SetDefault("seed.path", "")
	v.SetDefault("seed.driver", seed.DriverSQLite)
	v.SetDefault("seed.dsn", "")

	return v
}

// Load reads path into v when set and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string

	if c.HTTP.Addr == "" {
		problems = append(problems, "http.addr is empty")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateWindow <= 0 {
		problems = append(problems, "http.rate_window must be positive when rate limiting")
	}
	if c.Auth.JWTSecret != "" && c.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be positive")
	}

	switch c.Seed.Kind {
	case seed.KindBuiltin:
	case seed.KindYAML:
		if c.Seed.Path == "" {
			problems = append(problems, "seed.path is required for yaml seeds")
		}
	case seed.KindSQL:
		if c.Seed.DSN == "" {
			problems = append(problems, "seed.dsn is required for sql seeds")
		}
		if c.Seed.Driver != seed.DriverPostgres && c.Seed.Driver != seed.DriverSQLite {
			problems = append(problems, fmt.Sprintf("seed.driver %q is not supported", c.Seed.Driver))
		}
	default:
		problems = append(problems, fmt.Sprintf("seed.source %q is not supported", c.Seed.Kind))
	}

	if c.View.Debounce <= 0 {
		problems = append(problems, "view.debounce must be positive")
	}

	for name, d := range map[string]time.Duration{
		"latency.list":      c.Latency.List,
		"latency.selection": c.Latency.Selection,
		"latency.select":    c.Latency.Select,
		"latency.create":    c.Latency.Create,
		"latency.update":    c.Latency.Update,
		"latency.delete":    c.Latency.Delete,
		"latency.search":    c.Latency.Search,
		"view.create_delay": c.View.CreateDelay,
	} {
		if d < 0 {
			problems = append(problems, name+" is negative")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}
