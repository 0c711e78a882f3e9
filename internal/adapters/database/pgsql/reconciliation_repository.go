package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/models"
)

const bankLineColumns = `line_id, account_id, line_date, description, reference, amount, type, imported_at`

const runColumns = `run_id, account_id, from_date, to_date, matched_count, unmatched_count, net_difference,
	created_at, created_by`

const recordColumns = `record_id, run_id, record_date, description, reference, amount, type, status,
	difference, bank_line_id, system_record_id, created_at`

// PgxReconciliationRepository stores bank statements and reconciliation runs.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepository = (*PgxReconciliationRepository)(nil)

func toDomainBankLine(m models.BankStatementLine) domain.BankStatementLine {
	return domain.BankStatementLine{
		LineID:      m.LineID,
		AccountID:   m.AccountID,
		Date:        m.Date.UTC(),
		Description: m.Description,
		Reference:   m.Reference,
		Amount:      m.Amount,
		Type:        domain.Direction(m.Type),
		ImportedAt:  m.ImportedAt,
	}
}

func toDomainRun(m models.ReconciliationRun) domain.ReconciliationRun {
	return domain.ReconciliationRun{
		RunID:          m.RunID,
		AccountID:      m.AccountID,
		From:           m.From.UTC(),
		To:             m.To.UTC(),
		MatchedCount:   m.MatchedCount,
		UnmatchedCount: m.UnmatchedCount,
		NetDifference:  m.NetDifference,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

func toDomainRecord(m models.ReconciliationRecord) domain.ReconciliationRecord {
	return domain.ReconciliationRecord{
		RecordID:       m.RecordID,
		RunID:          m.RunID,
		Date:           m.Date.UTC(),
		Description:    m.Description,
		Reference:      m.Reference,
		Amount:         m.Amount,
		Type:           domain.Direction(m.Type),
		Status:         domain.MatchStatus(m.Status),
		Difference:     m.Difference,
		BankLineID:     m.BankLineID,
		SystemRecordID: m.SystemRecordID,
		CreatedAt:      m.CreatedAt,
	}
}

// SaveBankLines inserts a whole statement or nothing.
func (r *PgxReconciliationRepository) SaveBankLines(ctx context.Context, lines []domain.BankStatementLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, l := range lines {
			batch.Queue(`
				INSERT INTO bank_statement_lines (`+bankLineColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
				l.LineID, l.AccountID, l.Date, l.Description, l.Reference, l.Amount, string(l.Type), l.ImportedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			switch code, _ := pgErrorCode(err); code {
			case uniqueViolation:
				return fmt.Errorf("%w: bank line already imported", apperrors.ErrDuplicate)
			case foreignKeyViolation:
				return fmt.Errorf("%w: bank account does not exist", apperrors.ErrUnknownAccount)
			}
			return fmt.Errorf("failed to save bank lines: %w", err)
		}
		return nil
	})
}

func (r *PgxReconciliationRepository) ListBankLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.BankStatementLine, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+bankLineColumns+` FROM bank_statement_lines
		WHERE account_id = $1 AND line_date BETWEEN $2 AND $3
		ORDER BY line_date, seq`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank lines: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankStatementLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank lines: %w", err)
	}
	lines := make([]domain.BankStatementLine, len(found))
	for i, m := range found {
		lines[i] = toDomainBankLine(m)
	}
	return lines, nil
}

// SaveRun writes the run summary and its records, keeping the records' order in position.
func (r *PgxReconciliationRepository) SaveRun(ctx context.Context, run domain.ReconciliationRun, records []domain.ReconciliationRecord) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reconciliation_runs (`+runColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			run.RunID,
			run.AccountID,
			run.From,
			run.To,
			run.MatchedCount,
			run.UnmatchedCount,
			run.NetDifference,
			run.CreatedAt,
			run.CreatedBy,
		)
		if err != nil {
			if code, _ := pgErrorCode(err); code == uniqueViolation {
				return fmt.Errorf("%w: reconciliation run %s", apperrors.ErrDuplicate, run.RunID)
			}
			return fmt.Errorf("failed to save reconciliation run %s: %w", run.RunID, err)
		}

		batch := &pgx.Batch{}
		for i, rec := range records {
			batch.Queue(`
				INSERT INTO reconciliation_records (position, `+recordColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
				i,
				rec.RecordID,
				run.RunID,
				rec.Date,
				rec.Description,
				rec.Reference,
				rec.Amount,
				string(rec.Type),
				string(rec.Status),
				rec.Difference,
				rec.BankLineID,
				rec.SystemRecordID,
				rec.CreatedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save reconciliation records for run %s: %w", run.RunID, err)
		}
		return nil
	})
}

func (r *PgxReconciliationRepository) FindRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+runColumns+` FROM reconciliation_runs WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation run %s: %w", runID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ReconciliationRun])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reconciliation run %s", apperrors.ErrNotFound, runID)
		}
		return nil, fmt.Errorf("failed to scan reconciliation run %s: %w", runID, err)
	}
	run := toDomainRun(m)
	return &run, nil
}

func (r *PgxReconciliationRepository) ListRecordsByRun(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+recordColumns+` FROM reconciliation_records
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation records: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ReconciliationRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reconciliation records: %w", err)
	}
	records := make([]domain.ReconciliationRecord, len(found))
	for i, m := range found {
		records[i] = toDomainRecord(m)
	}
	return records, nil
}
