package memory

import (
	"context"
	"fmt"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
)

// InvoiceRepository implements portsrepo.InvoiceRepository. Lists keep creation order.
type InvoiceRepository struct {
	store *Store
}

var _ portsrepo.InvoiceRepository = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.invoices[invoice.InvoiceID]; ok {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, invoice.InvoiceID)
	}
	r.store.invoices[invoice.InvoiceID] = invoice
	r.store.invoiceKeys = append(r.store.invoiceKeys, invoice.InvoiceID)
	return nil
}

func (r *InvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	inv, ok := r.store.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return &inv, nil
}

func (r *InvoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Invoice, 0)
	for _, id := range r.store.invoiceKeys {
		inv := r.store.invoices[id]
		if filter.StudentID != "" && inv.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.invoices[invoice.InvoiceID]
	if !ok {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoice.InvoiceID)
	}
	if stored.Status != domain.InvoicePending {
		return fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, invoice.InvoiceID, stored.Status)
	}
	r.store.invoices[invoice.InvoiceID] = invoice
	return nil
}
