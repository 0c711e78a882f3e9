package export

import (
	"strconv"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func AccountsTable(accounts []domain.Account) Table {
	t := Table{Header: []string{"code", "name", "type", "balance", "active"}}
	for _, a := range accounts {
		t.Rows = append(t.Rows, []string{a.Code, a.Name, string(a.AccountType), amount(a.Balance), strconv.FormatBool(a.IsActive)})
	}
	return t
}

func LinesTable(lines []domain.JournalLine) Table {
	t := Table{Header: []string{"date", "journal_id", "description", "debit", "credit", "running_balance"}}
	for _, l := range lines {
		t.Rows = append(t.Rows, []string{
			l.JournalDate.Format(dateLayout), l.JournalID, l.JournalDescription,
			amount(l.Debit), amount(l.Credit), amount(l.RunningBalance),
		})
	}
	return t
}

func TrialBalanceTable(rows []domain.TrialBalanceRow) Table {
	t := Table{Header: []string{"code", "account", "type", "debit", "credit"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Code, r.AccountName, string(r.AccountType), amount(r.Debit), amount(r.Credit)})
	}
	return t
}

func sectionRows(t *Table, section string, amounts []domain.AccountAmount) {
	for _, a := range amounts {
		t.Rows = append(t.Rows, []string{section, a.Code, a.Name, amount(a.NetAmount)})
	}
}

func ProfitAndLossTable(r *domain.PAndLReport) Table {
	t := Table{Header: []string{"section", "code", "account", "amount"}}
	sectionRows(&t, "revenue", r.Revenue)
	sectionRows(&t, "expense", r.Expenses)
	t.Rows = append(t.Rows,
		[]string{"total", "", "Total revenue", amount(r.TotalRevenue)},
		[]string{"total", "", "Total expenses", amount(r.TotalExpenses)},
		[]string{"total", "", "Net profit", amount(r.NetProfit)},
	)
	return t
}

func BalanceSheetTable(r *domain.BalanceSheetReport) Table {
	t := Table{Header: []string{"section", "code", "account", "amount"}}
	sectionRows(&t, "asset", r.Assets)
	sectionRows(&t, "liability", r.Liabilities)
	sectionRows(&t, "equity", r.Equity)
	t.Rows = append(t.Rows,
		[]string{"equity", "", "Current earnings", amount(r.CurrentEarnings)},
		[]string{"total", "", "Total assets", amount(r.TotalAssets)},
		[]string{"total", "", "Total liabilities", amount(r.TotalLiabilities)},
		[]string{"total", "", "Total equity", amount(r.TotalEquity)},
	)
	return t
}

func TaxReportTable(r *domain.TaxReport) Table {
	t := Table{Header: []string{"code", "account", "balance"}}
	for _, a := range r.Accounts {
		t.Rows = append(t.Rows, []string{a.Code, a.Name, amount(a.NetAmount)})
	}
	t.Rows = append(t.Rows, []string{"", "Total", amount(r.Total)})
	return t
}

func InvoicesTable(invoices []domain.Invoice, now time.Time) Table {
	t := Table{Header: []string{"invoice_number", "student_id", "student_name", "amount", "tax", "due_date", "status"}}
	for i := range invoices {
		inv := &invoices[i]
		t.Rows = append(t.Rows, []string{
			inv.InvoiceNumber, inv.StudentID, inv.StudentName, amount(inv.Amount), amount(inv.TaxAmount),
			inv.DueDate.Format(dateLayout), string(inv.EffectiveStatus(now)),
		})
	}
	return t
}

// MatchResultsTable renders matcher output. Either side may be blank.
func MatchResultsTable(results []domain.MatchResult) Table {
	t := Table{Header: []string{"status", "difference", "bank_date", "bank_reference", "bank_amount", "system_date", "system_reference", "system_amount", "type"}}
	for _, r := range results {
		row := []string{string(r.Status), amount(r.Difference), "", "", "", "", "", "", ""}
		if r.BankLine != nil {
			row[2], row[3], row[4], row[8] = r.BankLine.Date.Format(dateLayout), r.BankLine.Reference, amount(r.BankLine.Amount), string(r.BankLine.Type)
		}
		if r.SystemRecord != nil {
			row[5], row[6], row[7], row[8] = r.SystemRecord.Date.Format(dateLayout), r.SystemRecord.Reference, amount(r.SystemRecord.Amount), string(r.SystemRecord.Type)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func ReconciliationRecordsTable(records []domain.ReconciliationRecord) Table {
	t := Table{Header: []string{"date", "description", "reference", "amount", "type", "status", "difference"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Date.Format(dateLayout), r.Description, r.Reference, amount(r.Amount), string(r.Type), string(r.Status), amount(r.Difference),
		})
	}
	return t
}
