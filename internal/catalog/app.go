package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"HeroCatalog/pkg/kit"
)

// HTTPDeps is the ambient plumbing around the catalog routes. A nil Registry
// disables HTTP metrics and the /metrics endpoint.
type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
	mountMetrics(r, deps)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	r.Mount("/", s.Routes())
	return r
}

func mountMetrics(r chi.Router, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	m := kit.NewMetrics(deps.Registry)
	r.Use(m.Middleware(deps.Service, kit.RouteLabel))

	if !deps.MetricsEnabled {
		return
	}

	scrape := promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{
		ErrorLog:          zap.NewStdLog(deps.Log),
		EnableOpenMetrics: true,
	})
	r.With(kit.MetricsAuth(deps.MetricsToken)).Handle("/metrics", scrape)
}
