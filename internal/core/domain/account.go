package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in balance sheet / P&L order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// DebitNormal reports whether a debit increases accounts of this type.
func (t AccountType) DebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents an entry in the chart of accounts.
type Account struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"` // unique short code, e.g. "1-1100"
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // mutated only by journal application
	AuditFields
}
