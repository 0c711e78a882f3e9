package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/models"
)

const packageColumns = `package_id, name, price, credit_hours, package_type, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

const studentCreditColumns = `student_id, remaining_hours, total_credit_hours, last_package_id, updated_at`

const creditTxnColumns = `transaction_id, student_id, type, hours, amount, package_id, class_id, reason,
	balance_after, txn_date, created_by`

// PgxCreditRepository stores credit packages, student balances and the credit ledger.
type PgxCreditRepository struct {
	BaseRepository
}

func newPgxCreditRepository(pool *pgxpool.Pool) *PgxCreditRepository {
	return &PgxCreditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CreditRepositoryFacade = (*PgxCreditRepository)(nil)

func toDomainPackage(m models.CreditPackage) domain.CreditPackage {
	return domain.CreditPackage{
		PackageID:   m.PackageID,
		Name:        m.Name,
		Price:       m.Price,
		CreditHours: m.CreditHours,
		PackageType: domain.PackageType(m.PackageType),
		IsActive:    m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainStudentCredit(m models.StudentCredit) domain.StudentCredit {
	return domain.StudentCredit{
		StudentID:        m.StudentID,
		RemainingHours:   m.RemainingHours,
		TotalCreditHours: m.TotalCreditHours,
		LastPackageID:    m.LastPackageID,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toDomainCreditTransaction(m models.CreditTransaction) domain.CreditTransaction {
	return domain.CreditTransaction{
		TransactionID: m.TransactionID,
		StudentID:     m.StudentID,
		Type:          domain.CreditTransactionType(m.Type),
		Hours:         m.Hours,
		Amount:        m.Amount,
		PackageID:     m.PackageID,
		ClassID:       m.ClassID,
		Reason:        m.Reason,
		BalanceAfter:  m.BalanceAfter,
		Date:          m.Date,
		CreatedBy:     m.CreatedBy,
	}
}

func (r *PgxCreditRepository) SavePackage(ctx context.Context, pkg domain.CreditPackage) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO credit_packages (`+packageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		pkg.PackageID,
		pkg.Name,
		pkg.Price,
		pkg.CreditHours,
		string(pkg.PackageType),
		pkg.IsActive,
		pkg.CreatedAt,
		pkg.CreatedBy,
		pkg.LastUpdatedAt,
		pkg.LastUpdatedBy,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == uniqueViolation {
			return fmt.Errorf("%w: package %s", apperrors.ErrDuplicate, pkg.PackageID)
		}
		return fmt.Errorf("failed to save package %s: %w", pkg.PackageID, err)
	}
	return nil
}

func (r *PgxCreditRepository) FindPackageByID(ctx context.Context, packageID string) (*domain.CreditPackage, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+packageColumns+` FROM credit_packages WHERE package_id = $1`, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query package %s: %w", packageID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.CreditPackage])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: package %s", apperrors.ErrNotFound, packageID)
		}
		return nil, fmt.Errorf("failed to scan package %s: %w", packageID, err)
	}
	pkg := toDomainPackage(m)
	return &pkg, nil
}

func (r *PgxCreditRepository) ListPackages(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+packageColumns+` FROM credit_packages
		WHERE NOT $1 OR is_active
		ORDER BY name, package_id`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CreditPackage])
	if err != nil {
		return nil, fmt.Errorf("failed to scan packages: %w", err)
	}
	pkgs := make([]domain.CreditPackage, len(found))
	for i, m := range found {
		pkgs[i] = toDomainPackage(m)
	}
	return pkgs, nil
}

func (r *PgxCreditRepository) UpdatePackage(ctx context.Context, pkg domain.CreditPackage) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE credit_packages
		SET name = $2, price = $3, credit_hours = $4, package_type = $5, is_active = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE package_id = $1;`,
		pkg.PackageID,
		pkg.Name,
		pkg.Price,
		pkg.CreditHours,
		string(pkg.PackageType),
		pkg.IsActive,
		pkg.LastUpdatedAt,
		pkg.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update package %s: %w", pkg.PackageID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: package %s", apperrors.ErrNotFound, pkg.PackageID)
	}
	return nil
}

func (r *PgxCreditRepository) CreateStudentCredit(ctx context.Context, credit domain.StudentCredit) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO student_credits (`+studentCreditColumns+`)
		VALUES ($1, $2, $3, $4, $5);`,
		credit.StudentID,
		credit.RemainingHours,
		credit.TotalCreditHours,
		credit.LastPackageID,
		credit.UpdatedAt,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == uniqueViolation {
			return fmt.Errorf("%w: credit account for student %s", apperrors.ErrDuplicate, credit.StudentID)
		}
		return fmt.Errorf("failed to create credit account for student %s: %w", credit.StudentID, err)
	}
	return nil
}

func (r *PgxCreditRepository) FindStudentCredit(ctx context.Context, studentID string) (*domain.StudentCredit, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+studentCreditColumns+` FROM student_credits WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit for student %s: %w", studentID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.StudentCredit])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: credit account for student %s", apperrors.ErrNotFound, studentID)
		}
		return nil, fmt.Errorf("failed to scan credit for student %s: %w", studentID, err)
	}
	credit := toDomainStudentCredit(m)
	return &credit, nil
}

func (r *PgxCreditRepository) ListCreditTransactions(ctx context.Context, studentID string) ([]domain.CreditTransaction, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+creditTxnColumns+` FROM credit_transactions
		WHERE student_id = $1
		ORDER BY seq`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit transactions for student %s: %w", studentID, err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CreditTransaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan credit transactions: %w", err)
	}
	txns := make([]domain.CreditTransaction, len(found))
	for i, m := range found {
		txns[i] = toDomainCreditTransaction(m)
	}
	return txns, nil
}

// ApplyCreditTransaction holds the student's balance row lock while it appends txn.
func (r *PgxCreditRepository) ApplyCreditTransaction(ctx context.Context, txn domain.CreditTransaction) (*domain.StudentCredit, error) {
	var result domain.StudentCredit
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		// Open the account on first use, then lock it.
		if _, err := tx.Exec(ctx, `
			INSERT INTO student_credits (student_id, updated_at) VALUES ($1, $2)
			ON CONFLICT (student_id) DO NOTHING;`, txn.StudentID, txn.Date); err != nil {
			return fmt.Errorf("failed to open credit account for student %s: %w", txn.StudentID, err)
		}
		rows, err := tx.Query(ctx, `
			SELECT `+studentCreditColumns+` FROM student_credits
			WHERE student_id = $1 FOR UPDATE`, txn.StudentID)
		if err != nil {
			return fmt.Errorf("failed to lock credit for student %s: %w", txn.StudentID, err)
		}
		m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.StudentCredit])
		if err != nil {
			return fmt.Errorf("failed to scan credit for student %s: %w", txn.StudentID, err)
		}

		after := m.RemainingHours.Add(txn.Hours)
		if after.IsNegative() {
			return fmt.Errorf("%w: student %s has %s hours, needs %s",
				apperrors.ErrInsufficientCredit, txn.StudentID, m.RemainingHours, txn.Hours.Neg())
		}
		txn.BalanceAfter = after
		m.RemainingHours = after
		m.UpdatedAt = txn.Date
		if txn.PackageID != "" {
			m.LastPackageID = txn.PackageID
		}

		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO credit_transactions (`+creditTxnColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
			txn.TransactionID,
			txn.StudentID,
			string(txn.Type),
			txn.Hours,
			txn.Amount,
			txn.PackageID,
			txn.ClassID,
			txn.Reason,
			txn.BalanceAfter,
			txn.Date,
			txn.CreatedBy,
		)
		batch.Queue(`
			UPDATE student_credits
			SET remaining_hours = $2, last_package_id = $3, updated_at = $4
			WHERE student_id = $1;`,
			m.StudentID, m.RemainingHours, m.LastPackageID, m.UpdatedAt,
		)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if code, _ := pgErrorCode(err); code == uniqueViolation {
				return fmt.Errorf("%w: credit transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
			}
			return fmt.Errorf("failed to apply credit transaction %s: %w", txn.TransactionID, err)
		}
		result = toDomainStudentCredit(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
