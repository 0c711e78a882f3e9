package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
)

func ppnRule() services.PPNRule {
	return services.PPNRule{
		Rate:                services.DefaultPPNRate,
		ReceivableAccountID: "ar",
		OutputAccountID:     "ppn-out",
		BaseAccountIDs:      map[string]bool{"income": true},
	}
}

func TestComputePPN(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"1000000", "110000"},
		{"1234567", "135802"}, // 135802.37
		{"50", "6"},           // 5.5 rounds away from zero
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got := services.ComputePPN(d(tt.base), ppnRule())
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestAddPPN(t *testing.T) {
	lines := []domain.JournalLine{
		{LineNo: 1, AccountID: "cash", Debit: d("1500000")},
		{LineNo: 2, AccountID: "income", Credit: d("1000000")},
		{LineNo: 3, AccountID: "other-income", Credit: d("500000")},
	}
	before := append([]domain.JournalLine(nil), lines...)

	out, tax, err := services.AddPPN(lines, ppnRule())
	require.NoError(t, err)
	assert.True(t, tax.Equal(d("110000")))
	require.Len(t, out, 5)
	assert.Equal(t, before, lines, "input lines must not change")

	assert.Equal(t, "ar", out[3].AccountID)
	assert.True(t, out[3].Debit.Equal(tax))
	assert.Equal(t, 4, out[3].LineNo)
	assert.Equal(t, "ppn-out", out[4].AccountID)
	assert.True(t, out[4].Credit.Equal(tax))

	debits, credits := domain.SumSides(out)
	assert.True(t, debits.Sub(credits).Equal(d("0")))
}

func TestAddPPN_NothingTaxable(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "expense", Debit: d("100")},
		{AccountID: "cash", Credit: d("100")},
	}
	out, tax, err := services.AddPPN(lines, ppnRule())
	require.NoError(t, err)
	assert.True(t, tax.IsZero())
	assert.Equal(t, lines, out)

	rule := ppnRule()
	rule.Rate = d("0")
	out, tax, err = services.AddPPN([]domain.JournalLine{{AccountID: "income", Credit: d("100")}}, rule)
	require.NoError(t, err)
	assert.True(t, tax.IsZero())
	assert.Len(t, out, 1)
}

func TestAddPPN_Misconfigured(t *testing.T) {
	rule := ppnRule()
	rule.Rate = d("-0.11")
	_, _, err := services.AddPPN(nil, rule)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	rule = ppnRule()
	rule.OutputAccountID = ""
	_, _, err = services.AddPPN(nil, rule)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
