package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// statementRow is one parsed row of a bank statement or system record file:
// date,description,reference,amount,type
type statementRow struct {
	ID          string
	Date        time.Time `validate:"required"`
	Description string
	Reference   string
	Amount      decimal.Decimal
	Type        string `validate:"required,oneof=debit credit"`
}

var validate = validator.New()

// readStatement parses rows with the columns date, description, reference, amount,
// type and an optional id. Amounts must be positive; type is debit or credit.
func readStatement(r io.Reader) ([]statementRow, error) {
	t, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for _, name := range []string{"date", "amount", "type"} {
		idx := t.Column(name)
		if idx < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[name] = idx
	}
	for _, name := range []string{"id", "description", "reference"} {
		cols[name] = t.Column(name)
	}

	field := func(rec []string, name string) string {
		idx := cols[name]
		if idx < 0 || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	rows := make([]statementRow, 0, len(t.Rows))
	for i, rec := range t.Rows {
		line := i + 2
		date, err := time.Parse(dateLayout, field(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}
		amt, err := decimal.NewFromString(strings.ReplaceAll(field(rec, "amount"), ",", ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount: %w", line, err)
		}
		if !amt.IsPositive() {
			return nil, fmt.Errorf("line %d: amount must be positive", line)
		}
		row := statementRow{
			ID:          field(rec, "id"),
			Date:        date,
			Description: field(rec, "description"),
			Reference:   field(rec, "reference"),
			Amount:      amt,
			Type:        strings.ToLower(field(rec, "type")),
		}
		if err := validate.Struct(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadBankLines parses a bank statement file. Lines without an id get "line-<n>".
func ReadBankLines(r io.Reader) ([]domain.BankStatementLine, error) {
	rows, err := readStatement(r)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.BankStatementLine, len(rows))
	for i, row := range rows {
		id := row.ID
		if id == "" {
			id = fmt.Sprintf("line-%d", i+1)
		}
		lines[i] = domain.BankStatementLine{
			LineID: id, Date: row.Date, Description: row.Description, Reference: row.Reference,
			Amount: row.Amount, Type: domain.Direction(row.Type),
		}
	}
	return lines, nil
}

// ReadSystemRecords parses a system record file. Records without an id get "rec-<n>".
func ReadSystemRecords(r io.Reader) ([]domain.SystemRecord, error) {
	rows, err := readStatement(r)
	if err != nil {
		return nil, err
	}
	records := make([]domain.SystemRecord, len(rows))
	for i, row := range rows {
		id := row.ID
		if id == "" {
			id = fmt.Sprintf("rec-%d", i+1)
		}
		records[i] = domain.SystemRecord{
			RecordID: id, Date: row.Date, Description: row.Description, Reference: row.Reference,
			Amount: row.Amount, Type: domain.Direction(row.Type),
		}
	}
	return records, nil
}
