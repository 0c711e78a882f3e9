package services

import (
	"context"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoices.
type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error)
}

// InvoiceWriterSvc defines the invoice lifecycle.
type InvoiceWriterSvc interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)

	// BillPackage issues a pending invoice for a credit package.
	BillPackage(ctx context.Context, studentID string, pkg *domain.CreditPackage, userID string) (*domain.Invoice, error)

	MarkPaid(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest, userID string) (*domain.Invoice, error)

	// CancelInvoice keeps the invoice with status cancelled and the reason.
	CancelInvoice(ctx context.Context, invoiceID string, req dto.CancelInvoiceRequest, userID string) (*domain.Invoice, error)
}

// InvoiceSvcFacade combines invoice reads and writes.
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
