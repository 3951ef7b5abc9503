// Package servicemetrics records application-service operations and scoring
// events.
package servicemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is implemented by every module's service metrics.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	// RecordRoundRecorded counts rounds added or edited, by game kind.
	RecordRoundRecorded(ctx context.Context, kind string)
	// RecordGameCompleted counts games that gained a winner, by game kind.
	RecordGameCompleted(ctx context.Context, kind string)
	// RecordPaywallBlocked counts free-tier rejections, by reason.
	RecordPaywallBlocked(ctx context.Context, reason string)
}

type prometheusMetrics struct {
	attempts       *prometheus.CounterVec
	successes      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	rounds         *prometheus.CounterVec
	completed      *prometheus.CounterVec
	paywallBlocked *prometheus.CounterVec
}

// NewPrometheus registers the service metrics on reg. Registering twice on the
// same registry reuses the already registered collectors.
func NewPrometheus(reg prometheus.Registerer, namespace string) Metrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_operation_success_total",
			Help:      "Service operations that finished without an infrastructure error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_operation_failures_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"service", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_recorded_total",
			Help:      "Rounds added or edited.",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Games that reached a winner.",
		}, []string{"kind"}),
		paywallBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paywall_blocked_total",
			Help:      "Actions rejected by the free tier.",
		}, []string{"reason"}),
	}

	m.attempts = register(reg, m.attempts)
	m.successes = register(reg, m.successes)
	m.failures = register(reg, m.failures)
	m.duration = register(reg, m.duration)
	m.rounds = register(reg, m.rounds)
	m.completed = register(reg, m.completed)
	m.paywallBlocked = register(reg, m.paywallBlocked)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRoundRecorded(_ context.Context, kind string) {
	m.rounds.WithLabelValues(kind).Inc()
}

func (m *prometheusMetrics) RecordGameCompleted(_ context.Context, kind string) {
	m.completed.WithLabelValues(kind).Inc()
}

func (m *prometheusMetrics) RecordPaywallBlocked(_ context.Context, reason string) {
	m.paywallBlocked.WithLabelValues(reason).Inc()
}

type noopMetrics struct{}

// NewNoop returns Metrics that record nothing.
func NewNoop() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noopMetrics) RecordRoundRecorded(context.Context, string)                            {}
func (noopMetrics) RecordGameCompleted(context.Context, string)                            {}
func (noopMetrics) RecordPaywallBlocked(context.Context, string)                           {}
