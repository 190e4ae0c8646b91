package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opList      = "list"
	opSelection = "selection"
	opSelect    = "select"
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opSearch    = "search"

	labelOp = "op"
)

type storeMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	if reg == nil {
		return nil
	}

	m := &storeMetrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Completed catalog store operations",
			},
			[]string{labelOp},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_operation_duration_seconds",
				Help:    "Catalog store operation latency, simulated delay included",
				Buckets: []float64{.05, .1, .25, .5, 1, 1.5, 2, 3, 5},
			},
			[]string{labelOp},
		),
	}

	reg.MustRegister(m.ops, m.latency)
	return m
}

func (m *storeMetrics) observe(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	m.latency.WithLabelValues(op).Observe(d.Seconds())
}
