package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event names published on the event bus.
const (
	EventLowBalanceReached = "credit.low_balance_reached"
	EventJournalPosted     = "ledger.journal_posted"
	EventInvoicePaid       = "invoice.paid"
)

// LowBalanceReached is emitted when a student's remaining hours cross below the
// configured threshold.
type LowBalanceReached struct {
	StudentID      string          `json:"studentID"`
	RemainingHours decimal.Decimal `json:"remainingHours"`
	Threshold      decimal.Decimal `json:"threshold"`
	LastPackageID  string          `json:"lastPackageID,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// JournalPosted is emitted after a journal is committed.
type JournalPosted struct {
	JournalID string          `json:"journalID"`
	Amount    decimal.Decimal `json:"amount"`
	PostedAt  time.Time       `json:"postedAt"`
}

// InvoicePaidEvent is emitted after an invoice transitions to paid.
type InvoicePaidEvent struct {
	InvoiceID string          `json:"invoiceID"`
	StudentID string          `json:"studentID"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paidAt"`
}
