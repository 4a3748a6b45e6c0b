// Package observability exposes Prometheus metrics for the chat
// pipeline and its supporting services.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for the chatbot process.
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal     *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	IntentTotal    *prometheus.CounterVec
	ChunksKept     prometheus.Counter
	ChunksDropped  prometheus.Counter
	AuditQueueSize prometheus.GaugeFunc
}

// New registers the chatbot collectors on a fresh registry.
// auditQueueDepth may be nil when no audit worker is configured.
func New(namespace string, auditQueueDepth func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Completed chat turns by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		IntentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_classifications_total",
			Help:      "Intent classifications by resolved category.",
		}, []string{"intent"}),
		ChunksKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relevance_chunks_kept_total",
			Help:      "Retrieved chunks that passed the relevance filter.",
		}),
		ChunksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relevance_chunks_dropped_total",
			Help:      "Retrieved chunks discarded by the relevance filter.",
		}),
	}
	reg.MustRegister(m.TurnsTotal, m.StageDuration, m.IntentTotal, m.ChunksKept, m.ChunksDropped)

	if auditQueueDepth != nil {
		m.AuditQueueSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_queue_depth",
			Help:      "Records waiting in the audit worker queue.",
		}, auditQueueDepth)
		reg.MustRegister(m.AuditQueueSize)
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
