package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/v1/wallet/payment", "201", 0.02)
	RecordHTTPRequest("POST", "/api/v1/wallet/payment", "201", 0.03)
	RecordHTTPRequest("POST", "/api/v1/wallet/payment", "400", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/wallet/payment", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/wallet/payment", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordTransaction(t *testing.T) {
	LedgerTransactionsTotal.Reset()
	LedgerAmountTotal.Reset()

	RecordTransaction("recharge", OutcomeApplied, 50)
	RecordTransaction("payment", OutcomeApplied, 30)
	RecordTransaction("payment", OutcomeRejected, 25)
	RecordTransaction("payment", OutcomeDuplicate, 30)

	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerTransactionsTotal.WithLabelValues("payment", OutcomeRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerTransactionsTotal.WithLabelValues("payment", OutcomeDuplicate)))
	assert.Equal(t, float64(30), testutil.ToFloat64(LedgerAmountTotal.WithLabelValues("payment")))
	assert.Equal(t, float64(50), testutil.ToFloat64(LedgerAmountTotal.WithLabelValues("recharge")))
}

func TestRecordWalletProvisioned(t *testing.T) {
	testCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carewallet_wallets_provisioned_total_test",
		Help: "Total number of wallet provisioning calls",
	})
	old := WalletsProvisionedTotal
	WalletsProvisionedTotal = testCounter
	defer func() { WalletsProvisionedTotal = old }()

	RecordWalletProvisioned()
	RecordWalletProvisioned()

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
}
