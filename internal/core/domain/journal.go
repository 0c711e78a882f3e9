package domain

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

// Journal represents a single, balanced financial event composed of multiple lines.
// Journals are immutable once posted; a reversal is a new journal.
type Journal struct {
	JournalID          string          `json:"journalID"`
	JournalDate        time.Time       `json:"journalDate"`
	Description        string          `json:"description"`
	Status             JournalStatus   `json:"status"`
	Amount             decimal.Decimal `json:"amount"` // total of the debit side
	OriginalJournalID  *string         `json:"originalJournalID,omitempty"`
	ReversingJournalID *string         `json:"reversingJournalID,omitempty"`
	Lines              []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether the journal reverses another one.
func (j *Journal) IsReversal() bool {
	return j.OriginalJournalID != nil
}
