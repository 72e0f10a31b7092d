package host

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// Metrics holds the loader's Prometheus collectors.
type Metrics struct {
	Attempts          *prometheus.CounterVec
	Bootstraps        *prometheus.CounterVec
	BootstrapDuration prometheus.Histogram
	CachedModules     prometheus.Gauge
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered. Registering twice with the same
// registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensecore",
				Subsystem: "loader",
				Name:      "attempts_total",
				Help:      "Module load attempts by discovery step and result",
			},
			[]string{"step", "result"},
		),
		Bootstraps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensecore",
				Subsystem: "loader",
				Name:      "bootstraps_total",
				Help:      "Bootstraps by result",
			},
			[]string{"result"},
		),
		BootstrapDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sensecore",
				Subsystem: "loader",
				Name:      "bootstrap_duration_seconds",
				Help:      "Bootstrap duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		CachedModules: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sensecore",
				Subsystem: "loader",
				Name:      "cached_modules",
				Help:      "Modules held open by the module cache",
			},
		),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) attempt(step entities.DiscoveryStep, ok bool) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(string(step), result(ok)).Inc()
}

func (m *Metrics) bootstrap(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.Bootstraps.WithLabelValues(result(ok)).Inc()
	m.BootstrapDuration.Observe(d.Seconds())
}

func (m *Metrics) cached(n int) {
	if m == nil {
		return
	}
	m.CachedModules.Set(float64(n))
}
