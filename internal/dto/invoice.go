package dto

import (
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is a billed line.
type InvoiceItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// InvoiceAddOnRequest is a flat extra charge.
type InvoiceAddOnRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest defines the data needed to issue an invoice.
type CreateInvoiceRequest struct {
	StudentID   string                `json:"studentID" binding:"required"`
	StudentName string                `json:"studentName"`
	DueDate     time.Time             `json:"dueDate" binding:"required"`
	Items       []InvoiceItemRequest  `json:"items" binding:"required,min=1,dive"`
	AddOns      []InvoiceAddOnRequest `json:"addOns" binding:"dive"`
	IncludePPN  bool                  `json:"includePPN"`
}

// PayInvoiceRequest marks an invoice paid.
type PayInvoiceRequest struct {
	PaymentRef string     `json:"paymentRef"`
	PaidAt     *time.Time `json:"paidAt"`
}

// CancelInvoiceRequest cancels a pending invoice.
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListInvoicesParams filters the invoice list.
type ListInvoicesParams struct {
	StudentID string `form:"studentID"`
	Status    string `form:"status" binding:"omitempty,oneof=pending paid overdue cancelled"`
	Format    string `form:"format"`
}

// InvoiceResponse defines the data returned for an invoice. Status is the effective status.
type InvoiceResponse struct {
	InvoiceID     string                `json:"invoiceID"`
	InvoiceNumber string                `json:"invoiceNumber"`
	StudentID     string                `json:"studentID"`
	StudentName   string                `json:"studentName"`
	Items         []domain.InvoiceItem  `json:"items"`
	AddOns        []domain.InvoiceAddOn `json:"addOns,omitempty"`
	IncludePPN    bool                  `json:"includePPN"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"taxAmount"`
	Amount        decimal.Decimal       `json:"amount"`
	DueDate       time.Time             `json:"dueDate"`
	Status        domain.InvoiceStatus  `json:"status"`
	PackageID     string                `json:"packageID,omitempty"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	PaymentRef    string                `json:"paymentRef,omitempty"`
	JournalID     string                `json:"journalID,omitempty"`
	CancelledAt   *time.Time            `json:"cancelledAt,omitempty"`
	CancelReason  string                `json:"cancelReason,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ToDomainItems converts request items and add-ons.
func (r CreateInvoiceRequest) ToDomainItems() ([]domain.InvoiceItem, []domain.InvoiceAddOn) {
	items := make([]domain.InvoiceItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.InvoiceItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	addOns := make([]domain.InvoiceAddOn, len(r.AddOns))
	for i, a := range r.AddOns {
		addOns[i] = domain.InvoiceAddOn{Name: a.Name, Amount: a.Amount}
	}
	return items, addOns
}

// ToInvoiceResponse converts an invoice, deriving overdue against now.
func ToInvoiceResponse(inv *domain.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		StudentID:     inv.StudentID,
		StudentName:   inv.StudentName,
		Items:         inv.Items,
		AddOns:        inv.AddOns,
		IncludePPN:    inv.IncludePPN,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
		Status:        inv.EffectiveStatus(now),
		PackageID:     inv.PackageID,
		PaidAt:        inv.PaidAt,
		PaymentRef:    inv.PaymentRef,
		JournalID:     inv.JournalID,
		CancelledAt:   inv.CancelledAt,
		CancelReason:  inv.CancelReason,
		CreatedAt:     inv.CreatedAt,
		CreatedBy:     inv.CreatedBy,
	}
}

func ToInvoiceResponses(invoices []domain.Invoice, now time.Time) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return res
}
