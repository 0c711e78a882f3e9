package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditPackage is a row of the credit_packages table.
type CreditPackage struct {
	PackageID   string          `db:"package_id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	CreditHours decimal.Decimal `db:"credit_hours"`
	PackageType string          `db:"package_type"`
	IsActive    bool            `db:"is_active"`
	AuditFields
}

// StudentCredit is a row of the student_credits table.
type StudentCredit struct {
	StudentID        string          `db:"student_id"`
	RemainingHours   decimal.Decimal `db:"remaining_hours"`
	TotalCreditHours decimal.Decimal `db:"total_credit_hours"`
	LastPackageID    string          `db:"last_package_id"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// CreditTransaction is a row of the credit_transactions table.
type CreditTransaction struct {
	TransactionID string          `db:"transaction_id"`
	StudentID     string          `db:"student_id"`
	Type          string          `db:"type"`
	Hours         decimal.Decimal `db:"hours"`
	Amount        decimal.Decimal `db:"amount"`
	PackageID     string          `db:"package_id"`
	ClassID       string          `db:"class_id"`
	Reason        string          `db:"reason"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Date          time.Time       `db:"txn_date"`
	CreatedBy     string          `db:"created_by"`
}
