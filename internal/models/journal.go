package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// Journal is a row of the journals table.
type Journal struct {
	JournalID          string          `db:"journal_id"`
	JournalDate        time.Time       `db:"journal_date"`
	Description        string          `db:"description"`
	Status             JournalStatus   `db:"status"`
	Amount             decimal.Decimal `db:"amount"`
	OriginalJournalID  *string         `db:"original_journal_id"`  // Nullable
	ReversingJournalID *string         `db:"reversing_journal_id"` // Nullable
	AuditFields
}

// JournalLine is a row of journal_lines joined with its journal's date and description.
type JournalLine struct {
	LineID             string          `db:"line_id"`
	JournalID          string          `db:"journal_id"`
	LineNo             int             `db:"line_no"`
	AccountID          string          `db:"account_id"`
	Debit              decimal.Decimal `db:"debit"`
	Credit             decimal.Decimal `db:"credit"`
	Notes              string          `db:"notes"`
	RunningBalance     decimal.Decimal `db:"running_balance"`
	JournalDate        time.Time       `db:"journal_date"`
	JournalDescription string          `db:"journal_description"`
}

// AccountActivity is one row of the per-account turnover query.
type AccountActivity struct {
	AccountID string          `db:"account_id"`
	Debit     decimal.Decimal `db:"total_debit"`
	Credit    decimal.Decimal `db:"total_credit"`
}
