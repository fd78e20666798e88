package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/offerings", "200", 0.05)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/offerings", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/deposits", "201", 0.1)
	RecordHTTPRequest("POST", "/deposits", "201", 0.2)
	RecordHTTPRequest("POST", "/deposits", "400", 0.05)

	okCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/deposits", "201"))
	badCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/deposits", "400"))

	assert.Equal(t, float64(2), okCount)
	assert.Equal(t, float64(1), badCount)
}

func TestRecordDeposit(t *testing.T) {
	DepositsTotal.Reset()

	RecordDeposit("succeeded", "pix")
	RecordDeposit("succeeded", "pix")
	RecordDeposit("expired", "pix")

	succeeded := testutil.ToFloat64(DepositsTotal.WithLabelValues("succeeded", "pix"))
	expired := testutil.ToFloat64(DepositsTotal.WithLabelValues("expired", "pix"))

	assert.Equal(t, float64(2), succeeded)
	assert.Equal(t, float64(1), expired)
}

func TestRecordPollTick(t *testing.T) {
	PollTicksTotal.Reset()

	RecordPollTick("ok")
	RecordPollTick("error")
	RecordPollTick("terminal")

	assert.Equal(t, float64(1), testutil.ToFloat64(PollTicksTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PollTicksTotal.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PollTicksTotal.WithLabelValues("terminal")))
}

func TestRecordWalletTransaction(t *testing.T) {
	WalletTransactionsTotal.Reset()

	RecordWalletTransaction("deposit")
	RecordWalletTransaction("investment_debit")

	assert.Equal(t, float64(1), testutil.ToFloat64(WalletTransactionsTotal.WithLabelValues("deposit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(WalletTransactionsTotal.WithLabelValues("investment_debit")))
}
