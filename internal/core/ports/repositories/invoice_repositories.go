package repositories

import (
	"context"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

// InvoiceFilter narrows ListInvoices. Zero values mean "any".
type InvoiceFilter struct {
	StudentID string
	Status    domain.InvoiceStatus // stored status; overdue is derived by the service
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
	// UpdateInvoice writes the lifecycle fields of an invoice that is still stored as
	// pending; ErrConflict when it no longer is.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error
}
