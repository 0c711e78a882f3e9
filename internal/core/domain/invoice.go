package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice. Overdue is never stored; it is
// derived from DueDate by EffectiveStatus.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceItem is a billed line.
type InvoiceItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Total returns quantity x price.
func (i InvoiceItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// InvoiceAddOn is a flat extra charge such as a registration fee.
type InvoiceAddOn struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Invoice bills a student.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	StudentID     string          `json:"studentID"`
	StudentName   string          `json:"studentName"`
	Items         []InvoiceItem   `json:"items"`
	AddOns        []InvoiceAddOn  `json:"addOns,omitempty"`
	IncludePPN    bool            `json:"includePPN"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Amount        decimal.Decimal `json:"amount"` // subtotal + tax
	DueDate       time.Time       `json:"dueDate"`
	Status        InvoiceStatus   `json:"status"`
	PackageID     string          `json:"packageID,omitempty"` // set for auto-billed bundles
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	PaymentRef    string          `json:"paymentRef,omitempty"`
	JournalID     string          `json:"journalID,omitempty"` // payment posting, if any
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	AuditFields
}

// EffectiveStatus derives overdue for pending invoices. The due date is payable
// through the end of that UTC day.
func (inv *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	y, m, d := inv.DueDate.UTC().Date()
	dayAfterDue := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	if inv.Status == InvoicePending && !now.Before(dayAfterDue) {
		return InvoiceOverdue
	}
	return inv.Status
}

// InvoiceSubtotal sums items and add-ons.
func InvoiceSubtotal(items []InvoiceItem, addOns []InvoiceAddOn) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	for _, a := range addOns {
		total = total.Add(a.Amount)
	}
	return total
}
