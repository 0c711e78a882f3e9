package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFinanceMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncJournal("posted")
	m.IncJournal("posted")
	m.IncJournal("rejected")
	m.IncCreditTransaction("DEDUCTION", "ok")
	m.IncLowBalance()
	m.AddReconResult("matched", 3)
	m.AddReconResult("unmatched", 0)
	m.IncInvoice("paid")
	m.ObserveHTTP("GET", "/api/v1/accounts", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.journalsPosted.WithLabelValues("posted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.journalsPosted.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.creditTransactions.WithLabelValues("DEDUCTION", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lowBalanceEvents))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.reconResults.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invoiceTransitions.WithLabelValues("paid")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestFinanceMetrics_NilSafe(t *testing.T) {
	var m *FinanceMetrics
	assert.NotPanics(t, func() {
		m.IncJournal("posted")
		m.IncCreditTransaction("PURCHASE", "ok")
		m.IncLowBalance()
		m.AddReconResult("matched", 1)
		m.IncInvoice("paid")
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}
