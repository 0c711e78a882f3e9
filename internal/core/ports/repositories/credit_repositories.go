package repositories

import (
	"context"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

// CreditPackageRepository persists the catalogue of credit packages.
type CreditPackageRepository interface {
	SavePackage(ctx context.Context, pkg domain.CreditPackage) error
	FindPackageByID(ctx context.Context, packageID string) (*domain.CreditPackage, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error)
	UpdatePackage(ctx context.Context, pkg domain.CreditPackage) error
}

// StudentCreditRepository persists per-student hour balances and their transaction log.
type StudentCreditRepository interface {
	// CreateStudentCredit opens a credit account. Returns apperrors.ErrDuplicate if one exists.
	CreateStudentCredit(ctx context.Context, credit domain.StudentCredit) error

	// FindStudentCredit returns the balance row without transactions, or apperrors.ErrNotFound.
	FindStudentCredit(ctx context.Context, studentID string) (*domain.StudentCredit, error)

	// ListCreditTransactions returns a student's transactions, oldest first.
	ListCreditTransactions(ctx context.Context, studentID string) ([]domain.CreditTransaction, error)

	// ApplyCreditTransaction appends txn and moves the balance by txn.Hours as one serialized unit
	// per student, opening the account on first use. If the result would be negative it
	// returns apperrors.ErrInsufficientCredit and changes nothing. The returned credit reflects
	// the balance after the transaction.
	ApplyCreditTransaction(ctx context.Context, txn domain.CreditTransaction) (*domain.StudentCredit, error)
}

// CreditRepositoryFacade combines the package catalogue and student balances.
type CreditRepositoryFacade interface {
	CreditPackageRepository
	StudentCreditRepository
}
