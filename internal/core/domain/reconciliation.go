package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a bank movement, from the bank statement's point of view:
// credit is money into the account, debit is money out.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Valid reports whether d is debit or credit.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// MatchStatus is the outcome of reconciling one record.
type MatchStatus string

const (
	StatusMatched   MatchStatus = "matched"
	StatusUnmatched MatchStatus = "unmatched"
)

// BankStatementLine is one imported row of a bank statement.
type BankStatementLine struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID,omitempty"` // ledger bank account it belongs to
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"` // always positive; Type carries the sign
	Type        Direction       `json:"type"`
	ImportedAt  time.Time       `json:"importedAt"`
}

// SystemRecord is an internally recorded movement to be matched against the bank.
type SystemRecord struct {
	RecordID    string          `json:"recordID"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Direction       `json:"type"`
}

// ReconciliationRecord is the persisted outcome for one bank line and/or system record.
// Status is matched only when both sides are linked and the difference is within tolerance.
type ReconciliationRecord struct {
	RecordID       string          `json:"recordID"`
	RunID          string          `json:"runID"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference"`
	Amount         decimal.Decimal `json:"amount"`
	Type           Direction       `json:"type"`
	Status         MatchStatus     `json:"status"`
	Difference     decimal.Decimal `json:"difference"` // bank amount - system amount
	BankLineID     string          `json:"bankLineID,omitempty"`
	SystemRecordID string          `json:"systemRecordID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// MatchResult pairs at most one bank line with at most one system record.
type MatchResult struct {
	BankLine     *BankStatementLine `json:"bankLine,omitempty"`
	SystemRecord *SystemRecord      `json:"systemRecord,omitempty"`
	Status       MatchStatus        `json:"status"`
	Difference   decimal.Decimal    `json:"difference"`
}

// ReconciliationRun summarises one execution of the matcher.
type ReconciliationRun struct {
	RunID          string          `json:"runID"`
	AccountID      string          `json:"accountID"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	MatchedCount   int             `json:"matchedCount"`
	UnmatchedCount int             `json:"unmatchedCount"`
	NetDifference  decimal.Decimal `json:"netDifference"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}
