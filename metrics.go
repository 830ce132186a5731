package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cccac/attendance-geofence/geofence"
)

const (
	transportHTTP      = "http"
	transportWebsocket = "websocket"
	transportGraphQL   = "graphql"
)

type metrics struct {
	registry *prometheus.Registry
	checks   *prometheus.CounterVec
	vertices prometheus.Gauge
	enabled  prometheus.Gauge
}

func newMetrics(fence *geofence.Geofence) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geofence_checks_total",
				Help: "Total number of geofence checks",
			},
			[]string{"transport", "result"},
		),
		vertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geofence_polygon_vertices",
			Help: "Number of vertices in the prepared geofence polygon",
		}),
		enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geofence_enabled",
			Help: "1 if the geofence polygon has at least 3 vertices",
		}),
	}
	m.registry.MustRegister(m.checks, m.vertices, m.enabled)

	m.vertices.Set(float64(fence.Len()))
	if fence.Enabled() {
		m.enabled.Set(1)
	}

	return m
}

func (m *metrics) observeCheck(transport string, res geofence.Result) {
	result := "outside"
	if res.IsWithin {
		result = "inside"
	}
	m.checks.WithLabelValues(transport, result).Inc()
}
