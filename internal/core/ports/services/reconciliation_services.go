package services

import (
	"context"
	"io"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

// MatcherSvc runs the matching algorithm without touching storage.
type MatcherSvc interface {
	AutoMatch(bankLines []domain.BankStatementLine, systemRecords []domain.SystemRecord) ([]domain.MatchResult, error)
}

// BankStatementSvc imports and lists bank statement lines.
type BankStatementSvc interface {
	ImportBankLines(ctx context.Context, req dto.ImportBankLinesRequest, userID string) ([]domain.BankStatementLine, error)

	// ImportBankCSV reads a statement in the CSV layout produced by the export package.
	ImportBankCSV(ctx context.Context, accountID string, r io.Reader, userID string) ([]domain.BankStatementLine, error)

	ListBankLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.BankStatementLine, error)
}

// ReconciliationSvc matches stored bank lines against the ledger and keeps the outcome.
type ReconciliationSvc interface {
	Reconcile(ctx context.Context, req dto.ReconcileRequest, userID string) (*domain.ReconciliationRun, []domain.ReconciliationRecord, error)
	GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, []domain.ReconciliationRecord, error)
}

// ReconciliationSvcFacade combines the reconciliation services.
type ReconciliationSvcFacade interface {
	MatcherSvc
	BankStatementSvc
	ReconciliationSvc
}
