package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/models"
	"github.com/jakartamandarin/jm_finance/internal/utils/accounting"
	"github.com/jakartamandarin/jm_finance/internal/utils/pagination"
)

const journalColumns = `journal_id, journal_date, description, status, amount,
	original_journal_id, reversing_journal_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `l.line_id, l.journal_id, l.line_no, l.account_id, l.debit, l.credit, l.notes,
	l.running_balance, j.journal_date, j.description AS journal_description`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal and line data.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func toDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		JournalID:          m.JournalID,
		JournalDate:        m.JournalDate.UTC(),
		Description:        m.Description,
		Status:             domain.JournalStatus(m.Status),
		Amount:             m.Amount,
		OriginalJournalID:  m.OriginalJournalID,
		ReversingJournalID: m.ReversingJournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:             m.LineID,
		JournalID:          m.JournalID,
		LineNo:             m.LineNo,
		AccountID:          m.AccountID,
		Debit:              m.Debit,
		Credit:             m.Credit,
		Notes:              m.Notes,
		RunningBalance:     m.RunningBalance,
		JournalDate:        m.JournalDate.UTC(),
		JournalDescription: m.JournalDescription,
	}
}

// lockedAccount is the part of an account SaveJournal needs while holding its row lock.
type lockedAccount struct {
	accountType domain.AccountType
	balance     decimal.Decimal
}

// lockAccounts takes row locks on every account in ascending ID order, so concurrent
// journals touching overlapping accounts cannot deadlock.
func lockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]lockedAccount, error) {
	sort.Strings(accountIDs)
	rows, err := tx.Query(ctx, `
		SELECT account_id, account_type, balance
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]lockedAccount, len(accountIDs))
	for rows.Next() {
		var id, accountType string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &accountType, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked[id] = lockedAccount{accountType: domain.AccountType(accountType), balance: balance}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, id)
		}
	}
	return locked, nil
}

// SaveJournal saves a journal, its lines and the balance changes in one DB transaction.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	seen := make(map[string]bool, len(balanceChanges)+len(lines))
	accountIDs := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		if !seen[id] {
			seen[id] = true
			accountIDs = append(accountIDs, id)
		}
	}
	for _, l := range lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			accountIDs = append(accountIDs, l.AccountID)
		}
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		// 1. Lock accounts and get current balances
		locked, err := lockAccounts(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		// 2. A reversal may only target a journal that is still posted
		if journal.OriginalJournalID != nil {
			var status string
			err := tx.QueryRow(ctx,
				`SELECT status FROM journals WHERE journal_id = $1 FOR UPDATE`, *journal.OriginalJournalID,
			).Scan(&status)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, *journal.OriginalJournalID)
			}
			if err != nil {
				return fmt.Errorf("failed to lock original journal: %w", err)
			}
			if domain.JournalStatus(status) != domain.Posted {
				return fmt.Errorf("%w: journal %s is %s", apperrors.ErrConflict, *journal.OriginalJournalID, status)
			}
		}

		// 3. Insert the journal header
		_, err = tx.Exec(ctx, `
			INSERT INTO journals (`+journalColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
			journal.JournalID,
			journal.JournalDate,
			journal.Description,
			string(journal.Status),
			journal.Amount,
			journal.OriginalJournalID,
			journal.ReversingJournalID,
			journal.CreatedAt,
			journal.CreatedBy,
			journal.LastUpdatedAt,
			journal.LastUpdatedBy,
		)
		if err != nil {
			if code, _ := pgErrorCode(err); code == uniqueViolation {
				return fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, journal.JournalID)
			}
			return apperrors.NewAppError(500, "failed to insert journal "+journal.JournalID, err)
		}

		// 4. Insert lines with running balances, following the lines in order
		batch := &pgx.Batch{}
		running := make(map[string]decimal.Decimal, len(locked))
		for id, acc := range locked {
			running[id] = acc.balance
		}
		for _, l := range lines {
			acc := locked[l.AccountID]
			signed, err := accounting.CalculateSignedAmount(l, acc.accountType)
			if err != nil {
				return err
			}
			running[l.AccountID] = running[l.AccountID].Add(signed)
			batch.Queue(`
				INSERT INTO journal_lines (line_id, journal_id, line_no, account_id, debit, credit, notes, running_balance, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
				l.LineID, journal.JournalID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Notes,
				running[l.AccountID], journal.CreatedAt,
			)
		}

		// 5. Apply balance changes
		for id, delta := range balanceChanges {
			batch.Queue(`
				UPDATE accounts
				SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
				WHERE account_id = $1;`,
				id, delta, journal.CreatedAt, journal.CreatedBy,
			)
		}

		// 6. Mark the original reversed
		if journal.OriginalJournalID != nil {
			batch.Queue(`
				UPDATE journals
				SET status = $2, reversing_journal_id = $3, last_updated_at = $4, last_updated_by = $5
				WHERE journal_id = $1;`,
				*journal.OriginalJournalID, string(domain.Reversed), journal.JournalID, journal.CreatedAt, journal.CreatedBy,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to write journal "+journal.JournalID, err)
		}
		return nil
	})
}

// FindJournalByID retrieves a journal header by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+journalColumns+` FROM journals WHERE journal_id = $1`, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Journal])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
		}
		return nil, apperrors.NewAppError(500, "failed to scan journal "+journalID, err)
	}
	j := toDomainJournal(m)
	return &j, nil
}

// ListJournals pages journals newest first using a (journal_date, created_at, journal_id) keyset.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, from, to *time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if from != nil {
		conds = append(conds, "journal_date >= "+arg(*from))
	}
	if to != nil {
		conds = append(conds, "journal_date <= "+arg(*to))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		// Tuple comparison is concise and efficient in Postgres
		conds = append(conds, fmt.Sprintf("(journal_date, created_at, journal_id) < (%s, %s, %s)",
			arg(cursor.Date), arg(cursor.CreatedAt), arg(cursor.ID)))
	}

	query := `SELECT ` + journalColumns + ` FROM journals`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	// We fetch one extra item to determine if there's a next page.
	query += ` ORDER BY journal_date DESC, created_at DESC, journal_id DESC LIMIT ` + arg(limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list journals", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Journal])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan journals", err)
	}

	var token *string
	if len(found) > limit {
		found = found[:limit]
		last := found[len(found)-1]
		t := pagination.EncodeToken(pagination.Cursor{Date: last.JournalDate, CreatedAt: last.CreatedAt, ID: last.JournalID})
		token = &t
	}
	journals := make([]domain.Journal, len(found))
	for i, m := range found {
		journals[i] = toDomainJournal(m)
	}
	return journals, token, nil
}

func (r *PgxJournalRepository) queryLines(ctx context.Context, query string, args ...any) ([]domain.JournalLine, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal lines", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan journal lines", err)
	}
	lines := make([]domain.JournalLine, len(found))
	for i, m := range found {
		lines[i] = toDomainLine(m)
	}
	return lines, nil
}

// FindLinesByJournalID retrieves the lines of one journal in line order.
func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	return r.queryLines(ctx, `
		SELECT `+lineColumns+`
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.journal_id = $1
		ORDER BY l.line_no`, journalID)
}

// ListLinesByAccount retrieves an account's lines oldest first.
func (r *PgxJournalRepository) ListLinesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalLine, error) {
	return r.queryLines(ctx, `
		SELECT `+lineColumns+`
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE l.account_id = $1
			AND ($2::timestamptz IS NULL OR j.journal_date >= $2)
			AND ($3::timestamptz IS NULL OR j.journal_date <= $3)
		ORDER BY j.journal_date, j.created_at, l.line_no`, accountID, from, to)
}
