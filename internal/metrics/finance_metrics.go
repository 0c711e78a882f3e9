package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FinanceMetrics collects ledger, credit, reconciliation, invoice and HTTP metrics.
// All methods are safe on a nil receiver so components can run without metrics.
type FinanceMetrics struct {
	journalsPosted     *prometheus.CounterVec
	creditTransactions *prometheus.CounterVec
	lowBalanceEvents   prometheus.Counter
	reconResults       *prometheus.CounterVec
	invoiceTransitions *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *FinanceMetrics
)

// Default returns metrics registered on the global registerer, built once.
func Default() *FinanceMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New builds and registers the collectors on registerer.
func New(registerer prometheus.Registerer) *FinanceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &FinanceMetrics{
		journalsPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jm_finance_journals_posted_total",
				Help: "Journal entries processed by outcome.",
			},
			[]string{"result"}, // posted | reversed | rejected
		),
		creditTransactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jm_finance_credit_transactions_total",
				Help: "Credit ledger transactions by type and outcome.",
			},
			[]string{"type", "result"},
		),
		lowBalanceEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jm_finance_low_balance_events_total",
				Help: "Students crossing below the low balance threshold.",
			},
		),
		reconResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jm_finance_reconciliation_results_total",
				Help: "Reconciliation results by status.",
			},
			[]string{"status"},
		),
		invoiceTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jm_finance_invoice_transitions_total",
				Help: "Invoice lifecycle transitions by resulting status.",
			},
			[]string{"status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jm_finance_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registerer.MustRegister(
		m.journalsPosted,
		m.creditTransactions,
		m.lowBalanceEvents,
		m.reconResults,
		m.invoiceTransitions,
		m.httpDuration,
	)
	return m
}

func (m *FinanceMetrics) IncJournal(result string) {
	if m == nil {
		return
	}
	m.journalsPosted.WithLabelValues(result).Inc()
}

func (m *FinanceMetrics) IncCreditTransaction(txnType, result string) {
	if m == nil {
		return
	}
	m.creditTransactions.WithLabelValues(txnType, result).Inc()
}

func (m *FinanceMetrics) IncLowBalance() {
	if m == nil {
		return
	}
	m.lowBalanceEvents.Inc()
}

func (m *FinanceMetrics) AddReconResult(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.reconResults.WithLabelValues(status).Add(float64(n))
}

func (m *FinanceMetrics) IncInvoice(status string) {
	if m == nil {
		return
	}
	m.invoiceTransitions.WithLabelValues(status).Inc()
}

func (m *FinanceMetrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
