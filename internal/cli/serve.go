package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HeroCatalog/internal/auth"
	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/catalog"
	"HeroCatalog/internal/seed"
	"HeroCatalog/pkg/kit"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the catalog over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8082", "listen address")
	f.Int("rate-limit", 60, "write requests per client per window (0 disables)")
	f.Bool("metrics", true, "expose /metrics")
	a.bind(f.Lookup("addr"), "http.addr")
	a.bind(f.Lookup("rate-limit"), "http.rate_limit")
	a.bind(f.Lookup("metrics"), "metrics.enabled")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	h, err := a.handler(ctx, prometheus.NewRegistry(), busy.Global())
	if err != nil {
		return err
	}
	return kit.RunHTTPServer(ctx, a.cfg.HTTP.Addr, h, a.log)
}

// handler assembles the store and the HTTP stack on top of it.
func (a *app) handler(ctx context.Context, reg *prometheus.Registry, tracker *busy.Tracker) (http.Handler, error) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tracker.Instrument(reg, service)

	store, err := a.openStore(ctx, tracker, reg)
	if err != nil {
		return nil, err
	}

	guard, err := a.writeGuard()
	if err != nil {
		return nil, err
	}

	s := &catalog.Server{
		Store:          store,
		Busy:           tracker,
		Log:            a.log,
		WriteGuard:     guard,
		OriginPatterns: a.cfg.HTTP.AllowedOrigins,
	}

	return catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            a.log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: a.cfg.Metrics.Enabled,
		MetricsToken:   a.cfg.Metrics.Token,
	}), nil
}

func (a *app) openStore(ctx context.Context, tracker *busy.Tracker, reg prometheus.Registerer) (*catalog.MemStore, error) {
	heroes, err := seed.Load(ctx, a.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	a.log.Info("catalog seeded", zap.String("source", a.cfg.Seed.Kind), zap.Int("records", len(heroes)))

	return catalog.NewMemStore(heroes, catalog.Options{
		Latency:  a.cfg.Latency,
		Busy:     tracker,
		Log:      a.log,
		Registry: reg,
	}), nil
}

// writeGuard rate-limits every write and, with a secret configured, demands
// an editor token.
func (a *app) writeGuard() (func(http.Handler) http.Handler, error) {
	limiter := kit.NewIPRateLimiter(a.cfg.HTTP.RateLimit, a.cfg.HTTP.RateWindow)

	if a.cfg.Auth.JWTSecret == "" {
		a.log.Warn("no jwt secret configured, write routes are open")
		return limiter.Middleware, nil
	}

	tm, err := auth.NewTokenMaker(a.cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	requireEditor := auth.RequireRole(tm, auth.RoleEditor)

	return func(next http.Handler) http.Handler {
		return limiter.Middleware(requireEditor(next))
	}, nil
}
