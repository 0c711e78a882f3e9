package accounting_test

import (
	"testing"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateSignedAmount(t *testing.T) {
	debit := domain.JournalLine{AccountID: "x", Debit: d("10")}
	credit := domain.JournalLine{AccountID: "x", Credit: d("10")}

	tests := []struct {
		accountType domain.AccountType
		line        domain.JournalLine
		want        string
	}{
		{domain.Asset, debit, "10"},
		{domain.Asset, credit, "-10"},
		{domain.Expense, debit, "10"},
		{domain.Liability, debit, "-10"},
		{domain.Liability, credit, "10"},
		{domain.Equity, credit, "10"},
		{domain.Income, credit, "10"},
		{domain.Income, debit, "-10"},
	}
	for _, tt := range tests {
		got, err := accounting.CalculateSignedAmount(tt.line, tt.accountType)
		require.NoError(t, err)
		assert.True(t, got.Equal(d(tt.want)), "%s debit=%s: got %s", tt.accountType, tt.line.Debit, got)
	}

	_, err := accounting.CalculateSignedAmount(debit, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateBalance(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, accounting.ValidateBalance(nil), apperrors.ErrEmptyEntry)
	})

	t.Run("unbalanced", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.JournalLine{
			{AccountID: "a", Debit: d("100")},
			{AccountID: "b", Credit: d("99.99")},
		})
		assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
	})

	t.Run("exact decimal equality", func(t *testing.T) {
		// 0.1 + 0.2 == 0.3 holds with decimals.
		err := accounting.ValidateBalance([]domain.JournalLine{
			{AccountID: "a", Debit: d("0.1")},
			{AccountID: "a", Debit: d("0.2")},
			{AccountID: "b", Credit: d("0.3")},
		})
		assert.NoError(t, err)
	})

	t.Run("malformed line", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.JournalLine{
			{AccountID: "a", Debit: d("1"), Credit: d("1")},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestBalanceChanges(t *testing.T) {
	types := map[string]domain.AccountType{"cash": domain.Asset, "income": domain.Income}
	changes, err := accounting.BalanceChanges([]domain.JournalLine{
		{AccountID: "cash", Debit: d("500")},
		{AccountID: "income", Credit: d("400")},
		{AccountID: "income", Credit: d("100")},
	}, types)
	require.NoError(t, err)
	assert.True(t, changes["cash"].Equal(d("500")))
	assert.True(t, changes["income"].Equal(d("500")))

	_, err = accounting.BalanceChanges([]domain.JournalLine{{AccountID: "ghost", Debit: d("1")}}, types)
	assert.ErrorIs(t, err, apperrors.ErrUnknownAccount)
}

func TestNormalBalance(t *testing.T) {
	dr, cr := accounting.NormalBalance(domain.Asset, d("100"))
	assert.True(t, dr.Equal(d("100")))
	assert.True(t, cr.IsZero())

	dr, cr = accounting.NormalBalance(domain.Liability, d("100"))
	assert.True(t, dr.IsZero())
	assert.True(t, cr.Equal(d("100")))

	dr, cr = accounting.NormalBalance(domain.Asset, d("-25"))
	assert.True(t, dr.IsZero())
	assert.True(t, cr.Equal(d("25")))
}
