// Package metrics provides Prometheus metrics for the consultation engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ConsultationsTotal    *prometheus.CounterVec
	RedFlagsTotal         *prometheus.CounterVec
	EscalationsTotal      *prometheus.CounterVec
	PatternMatches        prometheus.Histogram
	StageDuration         *prometheus.HistogramVec
	ConsultationDuration  prometheus.Histogram
	KafkaMessagesProduced prometheus.Counter
	KafkaMessagesConsumed prometheus.Counter
	OutboxPending         prometheus.Gauge
	WorkerQueueDepth      prometheus.Gauge
	CircuitBreakerState   *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ConsultationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultations_total",
			Help: "Consultations processed, by final status",
		}, []string{"status"}),
		RedFlagsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "red_flags_detected_total",
			Help: "Red flags detected, by urgency",
		}, []string{"urgency"}),
		EscalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "escalations_total",
			Help: "Escalations to a professional, by reason",
		}, []string{"reason"}),
		PatternMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pattern_matches_per_profile",
			Help:    "Qualifying health patterns per matched profile",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consultation_stage_duration_seconds",
			Help:    "Consultation stage duration",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 15},
		}, []string{"stage", "outcome"}),
		ConsultationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "consultation_duration_seconds",
			Help:    "End to end consultation duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		}),
		KafkaMessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total Kafka messages produced",
		}),
		KafkaMessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total Kafka messages consumed",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		WorkerQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "triage_worker_queue_depth",
			Help: "Triage requests waiting for a worker",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.ConsultationsTotal,
		m.RedFlagsTotal,
		m.EscalationsTotal,
		m.PatternMatches,
		m.StageDuration,
		m.ConsultationDuration,
		m.KafkaMessagesProduced,
		m.KafkaMessagesConsumed,
		m.OutboxPending,
		m.WorkerQueueDepth,
		m.CircuitBreakerState,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// ObserveConsultation counts a finished consultation.
func (m *Metrics) ObserveConsultation(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ConsultationsTotal.WithLabelValues(status).Inc()
	m.ConsultationDuration.Observe(d.Seconds())
}

// ObserveRedFlag counts one detected flag.
func (m *Metrics) ObserveRedFlag(urgency string) {
	if m == nil {
		return
	}
	m.RedFlagsTotal.WithLabelValues(urgency).Inc()
}

func (m *Metrics) ObserveEscalation(reason string) {
	if m == nil {
		return
	}
	m.EscalationsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePatternMatches(n int) {
	if m == nil {
		return
	}
	m.PatternMatches.Observe(float64(n))
}

// ObserveStage records a stage run. outcome is "ok", "degraded" or "error".
func (m *Metrics) ObserveStage(stage, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

// SetBreakerState matches the circuitbreaker state-change callback.
func (m *Metrics) SetBreakerState(name string, to circuitbreaker.State) {
	if m == nil {
		return
	}
	var v float64
	switch to {
	case circuitbreaker.StateOpen:
		v = 1
	case circuitbreaker.StateHalfOpen:
		v = 2
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(v)
}

func (m *Metrics) IncProduced() {
	if m == nil {
		return
	}
	m.KafkaMessagesProduced.Inc()
}

func (m *Metrics) IncConsumed() {
	if m == nil {
		return
	}
	m.KafkaMessagesConsumed.Inc()
}

func (m *Metrics) SetOutboxPending(n int) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(n))
}

func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.WorkerQueueDepth.Set(float64(n))
}

// Handler returns the Prometheus HTTP handler for the registry the metrics
// were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
