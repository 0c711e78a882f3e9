package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageType distinguishes one-off packages from auto-billed bundles.
type PackageType string

const (
	PackageSatuan PackageType = "SATUAN" // one-off purchase, never auto-billed
	PackageBundle PackageType = "BUNDLE" // re-billed when the balance runs low
)

// CreditPackage is a purchasable block of class hours.
type CreditPackage struct {
	PackageID   string          `json:"packageID"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CreditHours decimal.Decimal `json:"creditHours"`
	PackageType PackageType     `json:"packageType"`
	IsActive    bool            `json:"isActive"`
	AuditFields
}

// CreditTransactionType is the business reason for a change in credit hours.
type CreditTransactionType string

const (
	CreditPurchase   CreditTransactionType = "PURCHASE"
	CreditDeduction  CreditTransactionType = "DEDUCTION"
	CreditAdjustment CreditTransactionType = "ADJUSTMENT"
)

// CreditTransaction is one append-only row of a student's credit ledger.
// Hours are signed: purchases positive, deductions negative, adjustments either.
type CreditTransaction struct {
	TransactionID string                `json:"transactionID"`
	StudentID     string                `json:"studentID"`
	Type          CreditTransactionType `json:"type"`
	Hours         decimal.Decimal       `json:"hours"`
	Amount        decimal.Decimal       `json:"amount"` // money paid, purchases only
	PackageID     string                `json:"packageID,omitempty"`
	ClassID       string                `json:"classID,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	BalanceAfter  decimal.Decimal       `json:"balanceAfter"`
	Date          time.Time             `json:"date"`
	CreatedBy     string                `json:"createdBy"`
}

// StudentCredit is a student's running balance of prepaid hours.
//
// RemainingHours == TotalCreditHours + sum(Transactions[i].Hours). TotalCreditHours is
// the grant recorded when the credit account was opened.
type StudentCredit struct {
	StudentID        string              `json:"studentID"`
	RemainingHours   decimal.Decimal     `json:"remainingHours"`
	TotalCreditHours decimal.Decimal     `json:"totalCreditHours"`
	LastPackageID    string              `json:"lastPackageID,omitempty"`
	Transactions     []CreditTransaction `json:"transactions,omitempty"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// ComputedBalance recomputes the balance from the transaction log.
func (c StudentCredit) ComputedBalance() decimal.Decimal {
	total := c.TotalCreditHours
	for _, t := range c.Transactions {
		total = total.Add(t.Hours)
	}
	return total
}
