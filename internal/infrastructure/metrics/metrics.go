// Package metrics registro Prometheus propio del servicio.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intelliservice"

// Metrics contadores del poller, reportes y numeración. Implementa los puertos Recorder
// de polling, reports y billing.
type Metrics struct {
	registry *prometheus.Registry

	pollTicks       *prometheus.CounterVec
	pollSubscribers *prometheus.GaugeVec
	pollErrors      *prometheus.CounterVec

	reportDuration  *prometheus.HistogramVec
	reportFallbacks *prometheus.CounterVec

	invoiceNumbers *prometheus.CounterVec
}

// New crea el registro con las métricas del servicio más las del runtime de Go.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.pollTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_ticks_total",
		Help:      "Consultas ejecutadas por el servicio de polling",
	}, []string{"topic"})
	m.pollSubscribers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "poll_subscribers",
		Help:      "Suscriptores activos por tópico",
	}, []string{"topic"})
	m.pollErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_errors_total",
		Help:      "Consultas de polling fallidas",
	}, []string{"topic"})

	m.reportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Duración de carga y reducción de reportes",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms a ~10s
	}, []string{"report"})
	m.reportFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_fallbacks_total",
		Help:      "Reportes servidos con resumen vacío por fallo de lectura",
	}, []string{"report"})

	m.invoiceNumbers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_numbers_total",
		Help:      "Números de documento asignados",
	}, []string{"prefix_kind"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pollTicks, m.pollSubscribers, m.pollErrors,
		m.reportDuration, m.reportFallbacks,
		m.invoiceNumbers,
	)
	return m
}

// Registry expone el registro (tests y adaptadores).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler net/http para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) PollTick(topic string)  { m.pollTicks.WithLabelValues(topicKind(topic)).Inc() }
func (m *Metrics) PollError(topic string) { m.pollErrors.WithLabelValues(topicKind(topic)).Inc() }

// PollSubscribers fija el número de suscriptores del tópico.
func (m *Metrics) PollSubscribers(topic string, n int) {
	m.pollSubscribers.WithLabelValues(topicKind(topic)).Set(float64(n))
}

// ReportDuration observa la duración de un reporte.
func (m *Metrics) ReportDuration(report string, d time.Duration) {
	m.reportDuration.WithLabelValues(report).Observe(d.Seconds())
}

// ReportFallback cuenta un reporte degradado.
func (m *Metrics) ReportFallback(report string) { m.reportFallbacks.WithLabelValues(report).Inc() }

// DocumentNumber cuenta un número asignado; kind es "invoice" o "payroll".
func (m *Metrics) DocumentNumber(kind string) { m.invoiceNumbers.WithLabelValues(kind).Inc() }

// topicKind quita el id de los tópicos por entidad ("ticket-progress:<id>") para acotar cardinalidad.
func topicKind(topic string) string {
	kind, _, _ := strings.Cut(topic, ":")
	return kind
}
