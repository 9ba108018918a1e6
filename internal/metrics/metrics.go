package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ledger operations.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carewallet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carewallet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carewallet_ledger_transactions_total",
			Help: "Ledger append attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	LedgerAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carewallet_ledger_amount_total",
			Help: "Sum of applied transaction amounts by kind",
		},
		[]string{"kind"},
	)

	WalletsProvisionedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carewallet_wallets_provisioned_total",
			Help: "Total number of wallet provisioning calls",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordTransaction counts one append attempt. amount is only added for
// applied transactions.
func RecordTransaction(kind, outcome string, amount float64) {
	LedgerTransactionsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeApplied {
		LedgerAmountTotal.WithLabelValues(kind).Add(amount)
	}
}

func RecordWalletProvisioned() {
	WalletsProvisionedTotal.Inc()
}
