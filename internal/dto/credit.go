package dto

import (
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePackageRequest defines the data needed to create a credit package.
type CreatePackageRequest struct {
	Name        string             `json:"name" binding:"required"`
	Price       decimal.Decimal    `json:"price"`
	CreditHours decimal.Decimal    `json:"creditHours"`
	PackageType domain.PackageType `json:"packageType" binding:"required,oneof=SATUAN BUNDLE"`
}

// UpdatePackageRequest defines the updatable fields of a credit package.
type UpdatePackageRequest struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"isActive"`
}

// OpenCreditRequest opens a student credit account with an initial grant.
type OpenCreditRequest struct {
	InitialHours decimal.Decimal `json:"initialHours"`
}

// PurchaseRequest adds a package's hours to a student.
type PurchaseRequest struct {
	PackageID string          `json:"packageID" binding:"required"`
	Amount    decimal.Decimal `json:"amount"` // money paid; defaults to the package price when zero
}

// DeductRequest consumes hours for a class.
type DeductRequest struct {
	Hours   decimal.Decimal `json:"hours"`
	ClassID string          `json:"classID" binding:"required"`
}

// AdjustRequest applies a manual signed correction.
type AdjustRequest struct {
	Hours  decimal.Decimal `json:"hours"`
	Reason string          `json:"reason" binding:"required"`
}

// CreditPackageResponse defines the data returned for a credit package.
type CreditPackageResponse struct {
	PackageID   string             `json:"packageID"`
	Name        string             `json:"name"`
	Price       decimal.Decimal    `json:"price"`
	CreditHours decimal.Decimal    `json:"creditHours"`
	PackageType domain.PackageType `json:"packageType"`
	IsActive    bool               `json:"isActive"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// CreditTransactionResponse is one row of a student's credit history.
type CreditTransactionResponse struct {
	TransactionID string                       `json:"transactionID"`
	Type          domain.CreditTransactionType `json:"type"`
	Hours         decimal.Decimal              `json:"hours"`
	Amount        decimal.Decimal              `json:"amount"`
	PackageID     string                       `json:"packageID,omitempty"`
	ClassID       string                       `json:"classID,omitempty"`
	Reason        string                       `json:"reason,omitempty"`
	BalanceAfter  decimal.Decimal              `json:"balanceAfter"`
	Date          time.Time                    `json:"date"`
	CreatedBy     string                       `json:"createdBy"`
}

// StudentCreditResponse is the balance of one student.
type StudentCreditResponse struct {
	StudentID        string                      `json:"studentID"`
	RemainingHours   decimal.Decimal             `json:"remainingHours"`
	TotalCreditHours decimal.Decimal             `json:"totalCreditHours"`
	LastPackageID    string                      `json:"lastPackageID,omitempty"`
	Transactions     []CreditTransactionResponse `json:"transactions,omitempty"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func ToCreditPackageResponse(p *domain.CreditPackage) CreditPackageResponse {
	return CreditPackageResponse{
		PackageID:   p.PackageID,
		Name:        p.Name,
		Price:       p.Price,
		CreditHours: p.CreditHours,
		PackageType: p.PackageType,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func ToCreditPackageResponses(pkgs []domain.CreditPackage) []CreditPackageResponse {
	res := make([]CreditPackageResponse, len(pkgs))
	for i := range pkgs {
		res[i] = ToCreditPackageResponse(&pkgs[i])
	}
	return res
}

func ToCreditTransactionResponses(txns []domain.CreditTransaction) []CreditTransactionResponse {
	res := make([]CreditTransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = CreditTransactionResponse{
			TransactionID: t.TransactionID,
			Type:          t.Type,
			Hours:         t.Hours,
			Amount:        t.Amount,
			PackageID:     t.PackageID,
			ClassID:       t.ClassID,
			Reason:        t.Reason,
			BalanceAfter:  t.BalanceAfter,
			Date:          t.Date,
			CreatedBy:     t.CreatedBy,
		}
	}
	return res
}

// ToStudentCreditResponse converts a domain.StudentCredit, including its history when loaded.
func ToStudentCreditResponse(c *domain.StudentCredit) StudentCreditResponse {
	resp := StudentCreditResponse{
		StudentID:        c.StudentID,
		RemainingHours:   c.RemainingHours,
		TotalCreditHours: c.TotalCreditHours,
		LastPackageID:    c.LastPackageID,
		UpdatedAt:        c.UpdatedAt,
	}
	if len(c.Transactions) > 0 {
		resp.Transactions = ToCreditTransactionResponses(c.Transactions)
	}
	return resp
}
