package services

import (
	"context"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

// ReportingService defines operations for generating financial reports.
// A nil asOf reports the current account balances.
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)

	// ProfitAndLoss generates a profit and loss report for a specific period
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error)

	// TaxReport sums the balances of accounts whose name matches the tax pattern
	TaxReport(ctx context.Context, asOf *time.Time) (*domain.TaxReport, error)
}
