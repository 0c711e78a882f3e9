package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatementLine is a row of the bank_statement_lines table.
type BankStatementLine struct {
	LineID      string          `db:"line_id"`
	AccountID   string          `db:"account_id"`
	Date        time.Time       `db:"line_date"`
	Description string          `db:"description"`
	Reference   string          `db:"reference"`
	Amount      decimal.Decimal `db:"amount"`
	Type        string          `db:"type"`
	ImportedAt  time.Time       `db:"imported_at"`
}

// ReconciliationRun is a row of the reconciliation_runs table.
type ReconciliationRun struct {
	RunID          string          `db:"run_id"`
	AccountID      string          `db:"account_id"`
	From           time.Time       `db:"from_date"`
	To             time.Time       `db:"to_date"`
	MatchedCount   int             `db:"matched_count"`
	UnmatchedCount int             `db:"unmatched_count"`
	NetDifference  decimal.Decimal `db:"net_difference"`
	CreatedAt      time.Time       `db:"created_at"`
	CreatedBy      string          `db:"created_by"`
}

// ReconciliationRecord is a row of the reconciliation_records table.
type ReconciliationRecord struct {
	RecordID       string          `db:"record_id"`
	RunID          string          `db:"run_id"`
	Date           time.Time       `db:"record_date"`
	Description    string          `db:"description"`
	Reference      string          `db:"reference"`
	Amount         decimal.Decimal `db:"amount"`
	Type           string          `db:"type"`
	Status         string          `db:"status"`
	Difference     decimal.Decimal `db:"difference"`
	BankLineID     string          `db:"bank_line_id"`
	SystemRecordID string          `db:"system_record_id"`
	CreatedAt      time.Time       `db:"created_at"`
}
