package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Decision metrics
	Decisions        *prometheus.CounterVec
	DecisionLatency  prometheus.Histogram
	RiskScoreObserve prometheus.Histogram

	// Budget metrics
	BudgetDenials   *prometheus.CounterVec
	BudgetConsumed  prometheus.Counter
	BlockedRequests prometheus.Counter

	// Token metrics
	TokensIssued    prometheus.Counter
	TokensDestroyed *prometheus.CounterVec

	// Erasure metrics
	ErasureRequests *prometheus.CounterVec
	LayerFailures   *prometheus.CounterVec

	// Masking metrics
	MaskingOperations *prometheus.CounterVec

	// Consent metrics
	ConsentChecksPassed *prometheus.CounterVec
	ConsentChecksFailed *prometheus.CounterVec

	// Transport metrics
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_decisions_total",
			Help: "Total access decisions, labeled by verdict and pipeline",
		}, []string{"decision", "pipeline"}),
		DecisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "privy_decision_latency_seconds",
			Help:    "Latency of full decision evaluation",
			Buckets: prometheus.DefBuckets,
		}),
		RiskScoreObserve: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "privy_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		BudgetDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_budget_denials_total",
			Help: "Budget check denials, labeled by reason",
		}, []string{"reason"}),
		BudgetConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "privy_budget_epsilon_consumed_total",
			Help: "Cumulative epsilon consumed across all subjects",
		}),
		BlockedRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "privy_blocked_requester_hits_total",
			Help: "Requests rejected because the requester is abuse-blocked",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "privy_capability_tokens_issued_total",
			Help: "Total capability tokens issued",
		}),
		TokensDestroyed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_capability_tokens_destroyed_total",
			Help: "Total capability tokens destroyed, labeled by reason",
		}, []string{"reason"}),
		ErasureRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_erasure_requests_total",
			Help: "RTBF requests, labeled by final status",
		}, []string{"status"}),
		LayerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_erasure_layer_failures_total",
			Help: "Per-layer purge failures",
		}, []string{"layer"}),
		MaskingOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_masking_operations_total",
			Help: "Masking invocations, labeled by level",
		}, []string{"level"}),
		ConsentChecksPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_consent_checks_passed_total",
			Help: "Consent checks that passed, labeled by purpose",
		}, []string{"purpose"}),
		ConsentChecksFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "privy_consent_checks_failed_total",
			Help: "Consent checks that failed, labeled by purpose",
		}, []string{"purpose"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "privy_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
