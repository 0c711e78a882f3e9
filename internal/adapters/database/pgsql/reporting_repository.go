package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/models"
)

// PgxReportingRepository implements the reporting repository interface using PostgreSQL
type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new PostgreSQL reporting repository
func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetAccountActivity sums debits and credits per account for journals dated in [from, to].
// Reversed journals stay in: their reversal cancels them out.
func (r *PgxReportingRepository) GetAccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivity, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT l.account_id,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE j.journal_date BETWEEN $1 AND $2
		GROUP BY l.account_id
		ORDER BY l.account_id`, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account activity", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AccountActivity])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan account activity", err)
	}

	activity := make([]domain.AccountActivity, len(found))
	for i, m := range found {
		activity[i] = domain.AccountActivity{AccountID: m.AccountID, Debit: m.Debit, Credit: m.Credit}
	}
	return activity, nil
}
