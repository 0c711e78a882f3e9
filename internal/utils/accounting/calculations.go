package accounting

import (
	"fmt"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount returns the balance delta a line applies to an account of the given type.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
	net := line.Debit.Sub(line.Credit)
	switch accountType {
	case domain.Asset, domain.Expense:
		return net, nil
	case domain.Liability, domain.Equity, domain.Income:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
}

// ValidateBalance checks that every line is well formed and that debits equal credits exactly.
func ValidateBalance(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return apperrors.ErrEmptyEntry
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}
	debits, credits := domain.SumSides(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges folds lines into a per-account net delta.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, line.AccountID)
		}
		signed, err := CalculateSignedAmount(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}

// NormalBalance converts a natural-side amount into debit/credit for an opening line.
// A positive amount lands on the account's normal side.
func NormalBalance(accountType domain.AccountType, amount decimal.Decimal) (debit, credit decimal.Decimal) {
	positiveOnDebit := accountType.DebitNormal() == amount.IsPositive()
	abs := amount.Abs()
	if positiveOnDebit {
		return abs, decimal.Zero
	}
	return decimal.Zero, abs
}
