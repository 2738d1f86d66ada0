package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fse"

// Metrics - метрики конвейера валидации. Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	registry *prometheus.Registry

	classifications *prometheus.CounterVec
	geocoderCalls   *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	overlapping     prometheus.Gauge
	records         prometheus.Gauge
}

// New создает метрики на собственном реестре (вместе с go/process коллекторами)
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
		prometheus.NewGoCollector(),
	)

	m := &Metrics{
		registry: registry,
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "sites_total",
			Help:      "Classified sites by source and region membership.",
		}, []string{"source", "inside"}),
		geocoderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocoder",
			Name:      "requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Validation pipeline runs by final state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a validation pipeline run.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		overlapping: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_overlapping_records",
			Help:      "Overlapping records found by the most recent run.",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_records",
			Help:      "Records processed by the most recent run.",
		}),
	}

	registry.MustRegister(m.classifications, m.geocoderCalls, m.runs, m.runDuration, m.overlapping, m.records)
	return m
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry возвращает реестр (для тестов и дополнительных коллекторов)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveClassification(source string, inside bool) {
	if m == nil {
		return
	}
	label := "false"
	if inside {
		label = "true"
	}
	m.classifications.WithLabelValues(source, label).Inc()
}

// ObserveGeocoder учитывает исход запроса к геокодеру: ok, error, timeout, cache_hit
func (m *Metrics) ObserveGeocoder(outcome string) {
	if m == nil {
		return
	}
	m.geocoderCalls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRun(state string, duration time.Duration, records, overlapping int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(state).Inc()
	m.runDuration.Observe(duration.Seconds())
	if state == "completed" {
		m.records.Set(float64(records))
		m.overlapping.Set(float64(overlapping))
	}
}
