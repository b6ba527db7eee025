// Package metrics exposes Prometheus counters for entitlement, billing and
// HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/postforge/postforge/internal/domain/usage"
)

const namespace = "postforge"

type Metrics struct {
	quotaDecisions     *prometheus.CounterVec
	webhookEvents      *prometheus.CounterVec
	offerEvaluations   *prometheus.CounterVec
	generations        *prometheus.CounterVec
	usageRollover      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotaDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "entitlement",
				Name:      "quota_decisions_total",
				Help:      "Quota authorization decisions by content kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "webhook_events_total",
				Help:      "Payment webhook deliveries by event type and outcome.",
			},
			[]string{"event", "outcome"},
		),
		offerEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "offer_evaluations_total",
				Help:      "Offer validations and redemptions by result reason.",
			},
			[]string{"operation", "reason"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Content generation requests by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		usageRollover: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "usage_rollover_runs_total",
				Help:      "Usage period rollover runs by result.",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled by the API.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration observed at the API layer.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.quotaDecisions,
		m.webhookEvents,
		m.offerEvaluations,
		m.generations,
		m.usageRollover,
		m.httpRequests,
		m.httpRequestLatency,
	)
	return m
}

func (m *Metrics) ObserveQuotaDecision(kind usage.Kind, allowed bool, reason string) {
	outcome := "allowed"
	if !allowed {
		outcome = reason
	}
	m.quotaDecisions.WithLabelValues(kind.String(), outcome).Inc()
}

func (m *Metrics) ObserveWebhookEvent(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	m.webhookEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) ObserveOfferEvaluation(operation string, valid bool, reason string) {
	if valid {
		reason = "valid"
	}
	m.offerEvaluations.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) ObserveGeneration(kind usage.Kind, outcome string) {
	m.generations.WithLabelValues(kind.String(), outcome).Inc()
}

func (m *Metrics) ObserveUsageRollover(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.usageRollover.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records a finished request; route is the matched route
// template, never the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
