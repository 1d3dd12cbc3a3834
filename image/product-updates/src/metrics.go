package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "agri"
	subsystem = "product"
)

// UpdateCounter counts product updates served by the application.
type UpdateCounter interface {
	Inc()
	Value() float64
}

// productMetrics owns the registry scraped on the metrics port. Every
// instance has its own registry so tests never share counters.
type productMetrics struct {
	registry *prometheus.Registry
	updates  prometheus.Counter
}

func newProductMetrics() (*productMetrics, error) {
	m := &productMetrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "updates_total",
			Help:      "Total farm product updates",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.updates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

func (m *productMetrics) Inc() {
	m.updates.Inc()
}

func (m *productMetrics) Value() float64 {
	var metric dto.Metric
	if err := m.updates.Write(&metric); err != nil {
		logger.Error().Err(err).Msg("Failed to read update counter")
		return 0
	}
	return metric.GetCounter().GetValue()
}

// Handler serves the registry in the exposition format negotiated with the
// scraper.
func (m *productMetrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: promLogger{},
		Registry: m.registry,
	}))
}

// promLogger forwards exporter errors to the service logger.
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	logger.Error().Msg(fmt.Sprint(v...))
}
