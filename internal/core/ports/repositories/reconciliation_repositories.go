package repositories

import (
	"context"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

// ReconciliationRepository persists imported bank statements and reconciliation runs.
type ReconciliationRepository interface {
	// SaveBankLines stores imported bank statement lines.
	SaveBankLines(ctx context.Context, lines []domain.BankStatementLine) error

	// ListBankLines returns an account's bank lines dated within [from, to], oldest first.
	ListBankLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.BankStatementLine, error)

	// SaveRun stores a run summary and its records atomically.
	SaveRun(ctx context.Context, run domain.ReconciliationRun, records []domain.ReconciliationRecord) error

	// FindRun returns a run summary or apperrors.ErrNotFound.
	FindRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error)

	// ListRecordsByRun returns the records of a run in match order.
	ListRecordsByRun(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error)
}
