// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	rejections         *prometheus.CounterVec
	stranded           prometheus.Counter
	snapshotRefreshes  *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	reconciliationGaps prometheus.Gauge
	kafkaMessages      *prometheus.CounterVec
	kafkaDuration      *prometheus.HistogramVec
}

// New registers every collector on a private registry under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_transitions_total",
			Help:      "Lifecycle transitions by kind and result.",
		}, []string{"kind", "result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Proposed bookings refused by the validator, by reason.",
		}, []string{"reason"}),
		stranded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_stranded_transitions_total",
			Help:      "Transitions whose ledger write landed but whose booking write failed.",
		}),
		snapshotRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refreshes_total",
			Help:      "In-memory snapshot reloads by trigger.",
		}, []string{"trigger"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reconciliationGaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconciliation_findings",
			Help:      "Findings reported by the last reconciliation audit.",
		}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Lifecycle events published or consumed, by direction, type and result.",
		}, []string{"direction", "event_type", "result"}),
		kafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Time spent publishing or handling one lifecycle event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		m.transitions,
		m.rejections,
		m.stranded,
		m.snapshotRefreshes,
		m.httpRequests,
		m.httpDuration,
		m.reconciliationGaps,
		m.kafkaMessages,
		m.kafkaDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// A nil *Metrics is valid and records nothing.

func (m *Metrics) Transition(kind, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Rejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Stranded() {
	if m == nil {
		return
	}
	m.stranded.Inc()
}

func (m *Metrics) SnapshotRefreshed(trigger string) {
	if m == nil {
		return
	}
	m.snapshotRefreshes.WithLabelValues(trigger).Inc()
}

func (m *Metrics) ReconciliationFindings(n int) {
	if m == nil {
		return
	}
	m.reconciliationGaps.Set(float64(n))
}

func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) KafkaMessage(direction, eventType string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.kafkaMessages.WithLabelValues(direction, eventType, result).Inc()
	m.kafkaDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer is exposed for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
