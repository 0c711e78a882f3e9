package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a row of the invoices table. Items and AddOns are JSON documents.
type Invoice struct {
	InvoiceID     string          `db:"invoice_id"`
	InvoiceNumber string          `db:"invoice_number"`
	StudentID     string          `db:"student_id"`
	StudentName   string          `db:"student_name"`
	Items         []byte          `db:"items"`
	AddOns        []byte          `db:"add_ons"`
	IncludePPN    bool            `db:"include_ppn"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	TaxAmount     decimal.Decimal `db:"tax_amount"`
	Amount        decimal.Decimal `db:"amount"`
	DueDate       time.Time       `db:"due_date"`
	Status        string          `db:"status"`
	PackageID     string          `db:"package_id"`
	PaidAt        *time.Time      `db:"paid_at"`
	PaymentRef    string          `db:"payment_ref"`
	JournalID     string          `db:"journal_id"`
	CancelledAt   *time.Time      `db:"cancelled_at"`
	CancelReason  string          `db:"cancel_reason"`
	AuditFields
}
