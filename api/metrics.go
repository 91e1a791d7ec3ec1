package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded by searchesTotal
const (
	outcomeOK       = "ok"
	outcomeNotFound = "unavailable"
	outcomeInvalid  = "invalid"
)

type metrics struct {
	registry      *prometheus.Registry
	requestsTotal *prometheus.CounterVec
	searchesTotal *prometheus.CounterVec
	favorites     prometheus.Gauge
}

// newMetrics uses its own registry so several servers (tests) can coexist
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_widget_requests_total",
				Help: "Total requests by route and method.",
			},
			[]string{"route", "method"},
		),
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_widget_searches_total",
				Help: "Weather searches by outcome.",
			},
			[]string{"outcome"},
		),
		favorites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_widget_favorites",
			Help: "Number of favorite cities.",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.searchesTotal, m.favorites)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
