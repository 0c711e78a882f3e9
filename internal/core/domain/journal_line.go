package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is a single line of a journal, affecting exactly one account on one side.
type JournalLine struct {
	LineID         string          `json:"lineID"`
	JournalID      string          `json:"journalID"`
	LineNo         int             `json:"lineNo"` // position within the journal, from 1
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Notes          string          `json:"notes"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // account balance right after this line

	// Populated on reads for convenience.
	JournalDate        time.Time `json:"journalDate"`
	JournalDescription string    `json:"journalDescription"`
}

// Validate checks that the line carries exactly one positive side.
func (l JournalLine) Validate() error {
	if l.AccountID == "" {
		return fmt.Errorf("line %d: account ID is required", l.LineNo)
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("line %d: amounts must not be negative", l.LineNo)
	}
	hasDebit := l.Debit.IsPositive()
	hasCredit := l.Credit.IsPositive()
	if hasDebit == hasCredit {
		return fmt.Errorf("line %d: exactly one of debit or credit must be positive", l.LineNo)
	}
	return nil
}

// IsDebit reports whether the line is on the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the positive amount of whichever side is set.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// SumSides returns the debit and credit totals of lines.
func SumSides(lines []JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}
