// Package metrics holds the Prometheus collectors of the bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	updatesTotal *prometheus.CounterVec
	controls     prometheus.Gauge
	discovery    *prometheus.CounterVec
}

// New creates collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyremote",
			Name:      "updates_total",
			Help:      "Total number of control updates by kind and result",
		}, []string{"kind", "result"}),
		controls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "easyremote",
			Name:      "controls",
			Help:      "Number of controls discovered on the console",
		}),
		discovery: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyremote",
			Name:      "discoveries_total",
			Help:      "Total number of discovery handshakes by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveUpdate counts one update attempt.
func (m *Metrics) ObserveUpdate(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.updatesTotal.WithLabelValues(kind, result).Inc()
}

// ObserveDiscovery records a finished handshake.
func (m *Metrics) ObserveDiscovery(complete bool, controls int) {
	outcome := "complete"
	if !complete {
		outcome = "timeout"
	}
	m.discovery.WithLabelValues(outcome).Inc()
	m.controls.Set(float64(controls))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
