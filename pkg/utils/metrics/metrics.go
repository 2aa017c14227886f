package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leakwatch"

var registry = prometheus.NewRegistry()

var (
	// FaultsTotal counts faults observed by boundaries and the global listener
	FaultsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faults_total",
		Help:      "Faults observed, by kind.",
	}, []string{"kind"})

	// DiagnosticsDropped counts diagnostic records dropped because the queue was full
	DiagnosticsDropped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostics_dropped_total",
		Help:      "Diagnostic records dropped because the delivery queue was full.",
	})

	// DiagnosticDeliveries counts deliveries per channel and outcome
	DiagnosticDeliveries = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostic_deliveries_total",
		Help:      "Diagnostic record deliveries, by channel and outcome.",
	}, []string{"channel", "outcome"})

	// BackendRequests counts backend API requests per endpoint and outcome
	BackendRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Backend API requests, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// Instances tracks the number of live dashboard instances
	Instances = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "instances",
		Help:      "Live dashboard instances.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
