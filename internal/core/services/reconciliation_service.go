package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/export"
)

type reconciliationService struct {
	BaseService
	repo     portsrepo.ReconciliationRepository
	lines    portsrepo.LineReader
	accounts portsrepo.AccountReader
	cfg      MatchConfig
}

// ReconciliationServiceOption is a functional option for configuring the reconciliation service
type ReconciliationServiceOption func(*reconciliationService)

// WithMatchConfig overrides DefaultMatchConfig.
func WithMatchConfig(cfg MatchConfig) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.cfg = cfg
	}
}

// WithReconciliationBase sets metrics and clock.
func WithReconciliationBase(base BaseService) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.BaseService = base
	}
}

// NewReconciliationService creates the reconciliation service.
func NewReconciliationService(repo portsrepo.ReconciliationRepository, lines portsrepo.LineReader, accounts portsrepo.AccountReader, options ...ReconciliationServiceOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		repo:     repo,
		lines:    lines,
		accounts: accounts,
		cfg:      DefaultMatchConfig(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) AutoMatch(bankLines []domain.BankStatementLine, systemRecords []domain.SystemRecord) ([]domain.MatchResult, error) {
	return AutoMatch(bankLines, systemRecords, s.cfg)
}

// bankAccount returns the ledger account a statement belongs to. Only ASSET accounts hold cash.
func (s *reconciliationService) bankAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.AccountType != domain.Asset {
		return nil, fmt.Errorf("%w: account %s is %s, bank statements belong to ASSET accounts",
			apperrors.ErrValidation, acc.Code, acc.AccountType)
	}
	return acc, nil
}

func (s *reconciliationService) ImportBankLines(ctx context.Context, req dto.ImportBankLinesRequest, userID string) ([]domain.BankStatementLine, error) {
	return s.importLines(ctx, req.AccountID, dto.ToBankLines(req.Lines), false, userID)
}

func (s *reconciliationService) ImportBankCSV(ctx context.Context, accountID string, r io.Reader, userID string) ([]domain.BankStatementLine, error) {
	lines, err := export.ReadBankLines(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	// Positional ids from the file are only unique within it.
	return s.importLines(ctx, accountID, lines, true, userID)
}

func (s *reconciliationService) importLines(ctx context.Context, accountID string, lines []domain.BankStatementLine, freshIDs bool, userID string) ([]domain.BankStatementLine, error) {
	if _, err := s.bankAccount(ctx, accountID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no bank lines to import", apperrors.ErrValidation)
	}
	now := s.Now()
	for i := range lines {
		l := &lines[i]
		if !l.Type.Valid() {
			return nil, fmt.Errorf("%w: line %d has type %q, want debit or credit", apperrors.ErrValidation, i+1, l.Type)
		}
		if !l.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: line %d amount must be positive", apperrors.ErrValidation, i+1)
		}
		if l.Date.IsZero() {
			return nil, fmt.Errorf("%w: line %d date is required", apperrors.ErrValidation, i+1)
		}
		if freshIDs || l.LineID == "" {
			l.LineID = uuid.NewString()
		}
		l.AccountID = accountID
		l.Date = l.Date.UTC()
		l.ImportedAt = now
	}
	if err := s.repo.SaveBankLines(ctx, lines); err != nil {
		s.LogError(ctx, err, "Failed to save bank lines", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Bank statement imported",
		slog.String("account_id", accountID),
		slog.Int("line_count", len(lines)),
		slog.String("user_id", userID))
	return lines, nil
}

func (s *reconciliationService) ListBankLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.BankStatementLine, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", apperrors.ErrValidation)
	}
	return s.repo.ListBankLines(ctx, accountID, from, endOfDay(to))
}

// Reconcile matches the account's stored bank lines against its ledger lines in the
// period and stores the run. A ledger debit to the bank account is money in, which the
// bank reports as a credit.
func (s *reconciliationService) Reconcile(ctx context.Context, req dto.ReconcileRequest, userID string) (*domain.ReconciliationRun, []domain.ReconciliationRecord, error) {
	if req.From.After(req.To) {
		return nil, nil, fmt.Errorf("%w: from is after to", apperrors.ErrValidation)
	}
	if _, err := s.bankAccount(ctx, req.AccountID); err != nil {
		return nil, nil, err
	}
	to := endOfDay(req.To)

	bankLines, err := s.repo.ListBankLines(ctx, req.AccountID, req.From, to)
	if err != nil {
		return nil, nil, err
	}
	ledgerLines, err := s.lines.ListLinesByAccount(ctx, req.AccountID, &req.From, &to)
	if err != nil {
		return nil, nil, err
	}
	systemRecords := make([]domain.SystemRecord, len(ledgerLines))
	for i, l := range ledgerLines {
		dir := domain.DirectionDebit
		if l.IsDebit() {
			dir = domain.DirectionCredit
		}
		systemRecords[i] = domain.SystemRecord{
			RecordID:    l.LineID,
			Date:        l.JournalDate,
			Description: l.JournalDescription,
			Reference:   l.JournalID,
			Amount:      l.Amount(),
			Type:        dir,
		}
	}

	results, err := AutoMatch(bankLines, systemRecords, s.cfg)
	if err != nil {
		s.LogWarn(ctx, err, "Reconciliation refused", slog.String("account_id", req.AccountID))
		return nil, nil, err
	}

	now := s.Now()
	run := domain.ReconciliationRun{
		RunID:     uuid.NewString(),
		AccountID: req.AccountID,
		From:      req.From.UTC(),
		To:        req.To.UTC(),
		CreatedAt: now,
		CreatedBy: userID,
	}
	records := make([]domain.ReconciliationRecord, len(results))
	for i, r := range results {
		records[i] = toRecord(run.RunID, r, now)
		if r.Status == domain.StatusMatched {
			run.MatchedCount++
		} else {
			run.UnmatchedCount++
		}
	}
	run.NetDifference = netOf(bankLines).Sub(netOfRecords(systemRecords))

	if err := s.repo.SaveRun(ctx, run, records); err != nil {
		s.LogError(ctx, err, "Failed to save reconciliation run", slog.String("account_id", req.AccountID))
		return nil, nil, err
	}
	s.Metrics.AddReconResult(string(domain.StatusMatched), run.MatchedCount)
	s.Metrics.AddReconResult(string(domain.StatusUnmatched), run.UnmatchedCount)
	s.LogInfo(ctx, "Reconciliation completed",
		slog.String("run_id", run.RunID),
		slog.Int("matched", run.MatchedCount),
		slog.Int("unmatched", run.UnmatchedCount),
		slog.String("net_difference", run.NetDifference.String()))
	return &run, records, nil
}

func toRecord(runID string, r domain.MatchResult, now time.Time) domain.ReconciliationRecord {
	rec := domain.ReconciliationRecord{
		RecordID:   uuid.NewString(),
		RunID:      runID,
		Status:     r.Status,
		Difference: r.Difference,
		CreatedAt:  now,
	}
	if r.SystemRecord != nil {
		s := r.SystemRecord
		rec.SystemRecordID = s.RecordID
		rec.Date, rec.Description, rec.Reference, rec.Amount, rec.Type = s.Date, s.Description, s.Reference, s.Amount, s.Type
	}
	// The bank's view wins when both sides are present.
	if r.BankLine != nil {
		b := r.BankLine
		rec.BankLineID = b.LineID
		rec.Date, rec.Description, rec.Reference, rec.Amount, rec.Type = b.Date, b.Description, b.Reference, b.Amount, b.Type
	}
	return rec
}

func signed(amount decimal.Decimal, dir domain.Direction) decimal.Decimal {
	if dir == domain.DirectionDebit {
		return amount.Neg()
	}
	return amount
}

func netOf(lines []domain.BankStatementLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(signed(l.Amount, l.Type))
	}
	return total
}

func netOfRecords(records []domain.SystemRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(signed(r.Amount, r.Type))
	}
	return total
}

func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, []domain.ReconciliationRecord, error) {
	run, err := s.repo.FindRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.ListRecordsByRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, records, nil
}
