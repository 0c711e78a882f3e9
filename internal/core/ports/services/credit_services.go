package services

import (
	"context"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/shopspring/decimal"
)

// CreditPackageSvc manages purchasable credit packages.
type CreditPackageSvc interface {
	CreatePackage(ctx context.Context, req dto.CreatePackageRequest, userID string) (*domain.CreditPackage, error)
	GetPackage(ctx context.Context, packageID string) (*domain.CreditPackage, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error)
	UpdatePackage(ctx context.Context, packageID string, req dto.UpdatePackageRequest, userID string) (*domain.CreditPackage, error)
}

// CreditLedgerSvc moves a student's prepaid hours. Every mutation appends one transaction.
type CreditLedgerSvc interface {
	// OpenAccount records a student's initial grant of hours.
	OpenAccount(ctx context.Context, studentID string, initialHours decimal.Decimal, userID string) (*domain.StudentCredit, error)

	// Purchase adds a package's hours; amount is the money paid.
	Purchase(ctx context.Context, studentID string, req dto.PurchaseRequest, userID string) (*domain.CreditTransaction, error)

	// Deduct consumes hours for a class; fails with ErrInsufficientCredit rather than going negative.
	Deduct(ctx context.Context, studentID string, req dto.DeductRequest, userID string) (*domain.CreditTransaction, error)

	// Adjust applies a signed manual correction.
	Adjust(ctx context.Context, studentID string, req dto.AdjustRequest, userID string) (*domain.CreditTransaction, error)

	// GetBalance returns remaining hours; zero for a student without an account.
	GetBalance(ctx context.Context, studentID string) (decimal.Decimal, error)

	// GetStudentCredit returns the balance together with its transaction history.
	GetStudentCredit(ctx context.Context, studentID string) (*domain.StudentCredit, error)
}

// CreditSvcFacade combines package management and the credit ledger.
type CreditSvcFacade interface {
	CreditPackageSvc
	CreditLedgerSvc
}
