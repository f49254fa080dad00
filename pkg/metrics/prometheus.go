package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ClaimMetrics struct {
	registry           *prometheus.Registry
	claimsSubmitted    prometheus.Counter
	transitions        *prometheus.CounterVec
	authzDenied        prometheus.Counter
	validationFailures prometheus.Counter
	operationDuration  prometheus.Histogram
	openClaims         prometheus.Gauge
	claimAmount        prometheus.Histogram
	logger             *slog.Logger
}

func NewClaimMetrics(logger *slog.Logger) *ClaimMetrics {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &ClaimMetrics{
		registry: registry,
		claimsSubmitted: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "claims_submitted_total",
			Help: "Total number of submitted claims",
		}),
		transitions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "claim_transitions_total",
			Help: "Total number of applied status transitions",
		}, []string{"target_status"}),
		authzDenied: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "claim_authz_denied_total",
			Help: "Total number of operations rejected by the permission gate",
		}),
		validationFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "claim_validation_failures_total",
			Help: "Total number of operations rejected by field validation",
		}),
		operationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "claim_operation_duration_seconds",
			Help:    "Time taken to apply a workflow operation",
			Buckets: prometheus.DefBuckets,
		}),
		openClaims: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "claims_open",
			Help: "Number of claims not yet in a terminal status",
		}),
		claimAmount: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "claim_amount",
			Help:    "Distribution of submitted claim amounts",
			Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000},
		}),
		logger: logger,
	}
}

func (m *ClaimMetrics) RecordSubmission(amount float64) {
	m.claimsSubmitted.Inc()
	m.claimAmount.Observe(amount)
	m.openClaims.Inc()
}

// RecordTransition counts an applied transition. closesClaim marks a claim
// leaving the open set, so the gauge is decremented at most once per claim.
func (m *ClaimMetrics) RecordTransition(targetStatus string, duration time.Duration, closesClaim bool) {
	m.transitions.WithLabelValues(targetStatus).Inc()
	m.operationDuration.Observe(duration.Seconds())
	if closesClaim {
		m.openClaims.Dec()
	}
}

func (m *ClaimMetrics) RecordAuthzDenied() {
	m.authzDenied.Inc()
}

func (m *ClaimMetrics) RecordValidationFailure() {
	m.validationFailures.Inc()
}

func (m *ClaimMetrics) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ClaimMetrics) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *ClaimMetrics) Shutdown(ctx context.Context) error {
	m.logger.Info("Claim metrics shutdown complete")
	return nil
}
