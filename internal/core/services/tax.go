package services

import (
	"fmt"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultPPNRate is the Indonesian VAT rate applied when none is configured.
var DefaultPPNRate = decimal.RequireFromString("0.11")

// PPNRule describes how VAT is added to a draft entry.
type PPNRule struct {
	Rate                decimal.Decimal
	Scale               int32           // decimal places the tax is rounded to; 0 for rupiah
	ReceivableAccountID string          // debited with the tax
	OutputAccountID     string          // PPN Keluaran, credited with the tax
	BaseAccountIDs      map[string]bool // lines on these accounts form the taxable base
}

// ComputePPN rounds base x rate to the rule's scale, half away from zero.
func ComputePPN(base decimal.Decimal, rule PPNRule) decimal.Decimal {
	return base.Mul(rule.Rate).Round(rule.Scale)
}

// AddPPN returns a copy of lines with a balanced tax pair appended: a debit on the
// receivable account and a credit on the output account, each for the tax on the sum of
// credits to base accounts. The input slice is never modified. A zero tax adds nothing.
func AddPPN(lines []domain.JournalLine, rule PPNRule) ([]domain.JournalLine, decimal.Decimal, error) {
	if rule.Rate.IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("%w: PPN rate must not be negative", apperrors.ErrValidation)
	}
	if rule.ReceivableAccountID == "" || rule.OutputAccountID == "" {
		return nil, decimal.Zero, fmt.Errorf("%w: PPN accounts are not configured", apperrors.ErrValidation)
	}

	out := make([]domain.JournalLine, len(lines), len(lines)+2)
	copy(out, lines)

	base := decimal.Zero
	for _, l := range lines {
		if rule.BaseAccountIDs[l.AccountID] {
			base = base.Add(l.Credit)
		}
	}
	tax := ComputePPN(base, rule)
	if !tax.IsPositive() {
		return out, decimal.Zero, nil
	}

	next := len(lines) + 1
	out = append(out,
		domain.JournalLine{LineNo: next, AccountID: rule.ReceivableAccountID, Debit: tax, Notes: "PPN"},
		domain.JournalLine{LineNo: next + 1, AccountID: rule.OutputAccountID, Credit: tax, Notes: "PPN Keluaran"},
	)
	return out, tax, nil
}
