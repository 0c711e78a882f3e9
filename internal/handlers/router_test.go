package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakartamandarin/jm_finance/internal/adapters/database/memory"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/handlers"
	"github.com/jakartamandarin/jm_finance/internal/platform/config"
	"github.com/jakartamandarin/jm_finance/internal/seed"
)

func newTestRouter(t *testing.T, health handlers.HealthCheck) (*gin.Engine, *portssvc.ServiceContainer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		IsProduction:             true,
		SnowflakeNode:            1,
		OpeningBalanceEquityCode: "3-9000",
		CashAccountCode:          "1-1100",
		TuitionIncomeCode:        "4-1000",
		PPNRate:                  decimal.RequireFromString("0.11"),
		PPNReceivableAccountCode: "1-1300",
		PPNOutputAccountCode:     "2-1200",
		TaxAccountPattern:        services.DefaultTaxAccountPattern,
		LowBalanceThresholdHours: decimal.NewFromInt(2),
		AutoBillingDueDays:       7,
		ReconDateWindowDays:      3,
	}
	svc, err := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()), services.Dependencies{})
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), svc.Account, seed.DefaultChart(), "seed")
	require.NoError(t, err)

	r := gin.New()
	handlers.RegisterRoutes(r, cfg, svc, health)
	return r, svc
}

func call(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", "finance-admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func accountID(t *testing.T, svc *portssvc.ServiceContainer, code string) string {
	t.Helper()
	acc, err := svc.Account.GetAccountByCode(context.Background(), code)
	require.NoError(t, err)
	return acc.AccountID
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := call(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	r, _ = newTestRouter(t, func(context.Context) error { return errors.New("connection refused") })
	w = call(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPostJournalAndTrialBalance(t *testing.T) {
	r, svc := newTestRouter(t, nil)
	cash, income := accountID(t, svc, "1-1100"), accountID(t, svc, "4-1000")

	unbalanced := `{"date":"2024-03-01T00:00:00Z","description":"Kursus","lines":[` +
		`{"accountID":"` + cash + `","debit":"500000"},` +
		`{"accountID":"` + income + `","credit":"400000"}]}`
	w := call(r, http.MethodPost, "/api/v1/journals", unbalanced)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	balanced := `{"date":"2024-03-01T00:00:00Z","description":"Kursus","lines":[` +
		`{"accountID":"` + cash + `","debit":"500000"},` +
		`{"accountID":"` + income + `","credit":"500000"}]}`
	w = call(r, http.MethodPost, "/api/v1/journals", balanced)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var journal dto.JournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	assert.Equal(t, "finance-admin", journal.CreatedBy)
	assert.True(t, journal.Amount.Equal(decimal.NewFromInt(500000)))

	w = call(r, http.MethodGet, "/api/v1/reports/trial-balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tb dto.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tb))
	assert.Len(t, tb.Rows, 2)
	assert.True(t, tb.Totals.Debit.Equal(tb.Totals.Credit))

	w = call(r, http.MethodPost, "/api/v1/journals/"+journal.JournalID+"/reverse", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = call(r, http.MethodPost, "/api/v1/journals/"+journal.JournalID+"/reverse", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodGet, "/api/v1/accounts/"+cash+"/lines?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, strings.Count(w.Body.String(), "\r\n"), "header plus two lines")
}

func TestInvoicePaymentPostsJournal(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := call(r, http.MethodPost, "/api/v1/invoices", `{"studentID":"stu-1","studentName":"Budi",`+
		`"dueDate":"2030-01-10T00:00:00Z","includePPN":true,`+
		`"items":[{"name":"Paket 10 jam","quantity":"1","price":"1000000"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(1110000)))
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-"))

	w = call(r, http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/pay", `{"paymentRef":"TRF-001"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, "paid", string(inv.Status))
	assert.NotEmpty(t, inv.JournalID)

	w = call(r, http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/cancel", `{"reason":"duplicate"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodGet, "/api/v1/reports/tax", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tax dto.TaxReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tax))
	assert.True(t, tax.Total.Equal(decimal.NewFromInt(110000)), "tax total %s", tax.Total)
}

func TestCreditDeductionBeyondBalance(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := call(r, http.MethodPost, "/api/v1/students/stu-9/credit", `{"initialHours":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/api/v1/students/stu-9/credit/deduct", `{"hours":"2","classID":"HSK1-A"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(r, http.MethodGet, "/api/v1/students/stu-9/credit/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"studentID":"stu-9","remainingHours":"1"}`, w.Body.String())
}
