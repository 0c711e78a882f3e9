package dto

import (
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportParams holds the common query parameters of the report endpoints.
type ReportParams struct {
	AsOf   *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
	From   *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To     *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Format string     `form:"format"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// ReportTotals holds the debit and credit totals of a trial balance.
type ReportTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals ReportTotals              `json:"totals"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetProfit     decimal.Decimal `json:"netProfit"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		Balanced         bool            `json:"balanced"`
	} `json:"summary"`
}

// TaxReportResponse lists tax-like accounts and their total.
type TaxReportResponse struct {
	AsOf     string                  `json:"asOf"`
	Pattern  string                  `json:"pattern"`
	Accounts []AccountAmountResponse `json:"accounts"`
	Total    decimal.Decimal         `json:"total"`
}

// ToTrialBalanceResponse converts domain trial balance rows to a response DTO
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, asOf time.Time) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf: asOf.Format("2006-01-02"),
		Rows: make([]TrialBalanceRowResponse, len(rows)),
	}
	for i, row := range rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			Code:        row.Code,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
		response.Totals.Debit = response.Totals.Debit.Add(row.Debit)
		response.Totals.Credit = response.Totals.Credit.Add(row.Credit)
	}
	return response
}

func toAccountAmounts(amounts []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		res[i] = AccountAmountResponse{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: a.NetAmount}
	}
	return res
}

// ToProfitAndLossResponse converts a domain P&L report to a response DTO
func ToProfitAndLossResponse(report *domain.PAndLReport) ProfitAndLossResponse {
	response := ProfitAndLossResponse{
		FromDate: report.From.Format("2006-01-02"),
		ToDate:   report.To.Format("2006-01-02"),
		Revenue:  toAccountAmounts(report.Revenue),
		Expenses: toAccountAmounts(report.Expenses),
	}
	response.Summary.TotalRevenue = report.TotalRevenue
	response.Summary.TotalExpenses = report.TotalExpenses
	response.Summary.NetProfit = report.NetProfit
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet report to a response DTO
func ToBalanceSheetResponse(report *domain.BalanceSheetReport, asOf time.Time) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        asOf.Format("2006-01-02"),
		Assets:      toAccountAmounts(report.Assets),
		Liabilities: toAccountAmounts(report.Liabilities),
		Equity:      toAccountAmounts(report.Equity),
	}
	response.Summary.TotalAssets = report.TotalAssets
	response.Summary.TotalLiabilities = report.TotalLiabilities
	response.Summary.CurrentEarnings = report.CurrentEarnings
	response.Summary.TotalEquity = report.TotalEquity
	response.Summary.Balanced = report.IsBalanced()
	return response
}

// ToTaxReportResponse converts a domain tax report.
func ToTaxReportResponse(report *domain.TaxReport, asOf time.Time) TaxReportResponse {
	return TaxReportResponse{
		AsOf:     asOf.Format("2006-01-02"),
		Pattern:  report.Pattern,
		Accounts: toAccountAmounts(report.Accounts),
		Total:    report.Total,
	}
}
