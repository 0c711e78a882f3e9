package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_RoundTrip(t *testing.T) {
	table := Table{
		Header: []string{"name", "note", "amount"},
		Rows: [][]string{
			{"Budi, Santoso", `said "halo"`, "2,500,000.00"},
			{"Siti", "line one\nline two", ""},
			{"", `"`, `a,"b",c`},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	parsed, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, len(table.Rows)+1)
	assert.Equal(t, table.Header, parsed[0])
	for i, row := range table.Rows {
		assert.Equal(t, row, parsed[i+1])
	}

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, table, back)
}

func TestWriteCSV_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", `x"y`}}}))
	assert.Equal(t, "\"a\",\"b\"\r\n\"1\",\"x\"\"y\"\r\n", buf.String())
}

func TestWriteCSV_RaggedRow(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, Table{Header: []string{"a", "b"}, Rows: [][]string{{"only one"}}})
	assert.Error(t, err)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadBankLines(t *testing.T) {
	in := "\ufeffdate,description,reference,amount,type\n" +
		"2024-01-15,\"SPP Januari, Budi\",TRX-1,\"2,500,000\",credit\n" +
		"2024-01-16,Listrik,TRX-2,350000.50,DEBIT\n"

	lines, err := ReadBankLines(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "line-1", lines[0].LineID)
	assert.Equal(t, "SPP Januari, Budi", lines[0].Description)
	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(2500000)))
	assert.Equal(t, domain.DirectionCredit, lines[0].Type)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), lines[0].Date)
	assert.Equal(t, domain.DirectionDebit, lines[1].Type)
}

func TestReadSystemRecords_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing column", "date,amount\n2024-01-15,10\n"},
		{"bad date", "date,amount,type\n15/01/2024,10,credit\n"},
		{"bad amount", "date,amount,type\n2024-01-15,ten,credit\n"},
		{"negative amount", "date,amount,type\n2024-01-15,-10,credit\n"},
		{"bad type", "date,amount,type\n2024-01-15,10,sideways\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSystemRecords(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestMatchResultsTable(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	results := []domain.MatchResult{
		{
			BankLine:     &domain.BankStatementLine{Date: day, Reference: "B1", Amount: decimal.NewFromInt(2500000), Type: domain.DirectionCredit},
			SystemRecord: &domain.SystemRecord{Date: day, Reference: "S1", Amount: decimal.NewFromInt(2400000), Type: domain.DirectionCredit},
			Status:       domain.StatusUnmatched,
			Difference:   decimal.NewFromInt(100000),
		},
		{
			SystemRecord: &domain.SystemRecord{Date: day, Reference: "S2", Amount: decimal.NewFromInt(10), Type: domain.DirectionDebit},
			Status:       domain.StatusUnmatched,
			Difference:   decimal.NewFromInt(10),
		},
	}
	table := MatchResultsTable(results)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"unmatched", "100000.00", "2024-01-15", "B1", "2500000.00", "2024-01-15", "S1", "2400000.00", "credit"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][2])
	assert.Equal(t, "debit", table.Rows[1][8])
}
