package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the controller.
type Metrics struct {
	// Backend gateway metrics.
	GatewayRequests *prometheus.CounterVec   // labels: endpoint={chat,simulate,baseline,map}, outcome={success,error}
	GatewayDuration *prometheus.HistogramVec // labels: endpoint
	BaselineCache   *prometheus.CounterVec   // labels: result={hit,miss}

	// Session metrics.
	ChatTurns        *prometheus.CounterVec // labels: role={user,assistant}
	SimulationRuns   *prometheus.CounterVec // labels: outcome={success,error,rejected}
	BaselineToggles  *prometheus.CounterVec // labels: outcome={on,off,aborted,stale}
	GeometryOffline  prometheus.Gauge
	RecordsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all controller metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.GatewayRequests,
		m.GatewayDuration,
		m.BaselineCache,
		m.ChatTurns,
		m.SimulationRuns,
		m.BaselineToggles,
		m.GeometryOffline,
		m.RecordsPublished,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "gateway_requests_total",
			Help:      "Backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "traffic_ctl",
			Name:      "gateway_request_duration_seconds",
			Help:      "Backend request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		BaselineCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "baseline_cache_total",
			Help:      "Baseline cache lookups by result.",
		}, []string{"result"}),
		ChatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "chat_turns_total",
			Help:      "Transcript turns appended by role.",
		}, []string{"role"}),
		SimulationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "simulation_runs_total",
			Help:      "Simulation attempts by outcome.",
		}, []string{"outcome"}),
		BaselineToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "baseline_toggles_total",
			Help:      "Baseline comparison toggles by outcome.",
		}, []string{"outcome"}),
		GeometryOffline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "traffic_ctl",
			Name:      "geometry_offline",
			Help:      "1 when the map geometry could not be loaded, 0 otherwise.",
		}),
		RecordsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_ctl",
			Name:      "simulation_records_published_total",
			Help:      "Simulation records published by outcome.",
		}, []string{"outcome"}),
	}
}
