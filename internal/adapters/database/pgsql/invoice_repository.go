package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/models"
)

const invoiceColumns = `invoice_id, invoice_number, student_id, student_name, items, add_ons, include_ppn,
	subtotal, tax_amount, amount, due_date, status, package_id, paid_at, payment_ref, journal_id,
	cancelled_at, cancel_reason, created_at, created_by, last_updated_at, last_updated_by`

// PgxInvoiceRepository stores invoices with their items as JSONB.
type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepository = (*PgxInvoiceRepository)(nil)

func toModelInvoice(d domain.Invoice) (models.Invoice, error) {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to encode items of invoice %s: %w", d.InvoiceID, err)
	}
	addOns := d.AddOns
	if addOns == nil {
		addOns = []domain.InvoiceAddOn{}
	}
	addOnsJSON, err := json.Marshal(addOns)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to encode add-ons of invoice %s: %w", d.InvoiceID, err)
	}
	return models.Invoice{
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		StudentID:     d.StudentID,
		StudentName:   d.StudentName,
		Items:         items,
		AddOns:        addOnsJSON,
		IncludePPN:    d.IncludePPN,
		Subtotal:      d.Subtotal,
		TaxAmount:     d.TaxAmount,
		Amount:        d.Amount,
		DueDate:       d.DueDate,
		Status:        string(d.Status),
		PackageID:     d.PackageID,
		PaidAt:        d.PaidAt,
		PaymentRef:    d.PaymentRef,
		JournalID:     d.JournalID,
		CancelledAt:   d.CancelledAt,
		CancelReason:  d.CancelReason,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}, nil
}

func toDomainInvoice(m models.Invoice) (domain.Invoice, error) {
	inv := domain.Invoice{
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		StudentID:     m.StudentID,
		StudentName:   m.StudentName,
		IncludePPN:    m.IncludePPN,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		Amount:        m.Amount,
		DueDate:       m.DueDate.UTC(),
		Status:        domain.InvoiceStatus(m.Status),
		PackageID:     m.PackageID,
		PaidAt:        m.PaidAt,
		PaymentRef:    m.PaymentRef,
		JournalID:     m.JournalID,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if err := json.Unmarshal(m.Items, &inv.Items); err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to decode items of invoice %s: %w", m.InvoiceID, err)
	}
	if err := json.Unmarshal(m.AddOns, &inv.AddOns); err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to decode add-ons of invoice %s: %w", m.InvoiceID, err)
	}
	if len(inv.AddOns) == 0 {
		inv.AddOns = nil
	}
	return inv, nil
}

func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m, err := toModelInvoice(invoice)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);`,
		m.InvoiceID,
		m.InvoiceNumber,
		m.StudentID,
		m.StudentName,
		m.Items,
		m.AddOns,
		m.IncludePPN,
		m.Subtotal,
		m.TaxAmount,
		m.Amount,
		m.DueDate,
		m.Status,
		m.PackageID,
		m.PaidAt,
		m.PaymentRef,
		m.JournalID,
		m.CancelledAt,
		m.CancelReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == uniqueViolation {
			return fmt.Errorf("%w: invoice %s (%s)", apperrors.ErrDuplicate, m.InvoiceID, m.InvoiceNumber)
		}
		return fmt.Errorf("failed to save invoice %s: %w", m.InvoiceID, err)
	}
	return nil
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice %s: %w", invoiceID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		return nil, fmt.Errorf("failed to scan invoice %s: %w", invoiceID, err)
	}
	inv, err := toDomainInvoice(m)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns matching invoices in creation order.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE ($1 = '' OR student_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY seq`, filter.StudentID, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoices: %w", err)
	}
	invoices := make([]domain.Invoice, 0, len(found))
	for _, m := range found {
		inv, err := toDomainInvoice(m)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// UpdateInvoice writes the lifecycle fields of a pending invoice. Items and amounts are
// fixed at creation.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE invoices
		SET status = $2, paid_at = $3, payment_ref = $4, journal_id = $5, cancelled_at = $6, cancel_reason = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE invoice_id = $1 AND status = 'pending';`,
		invoice.InvoiceID,
		string(invoice.Status),
		invoice.PaidAt,
		invoice.PaymentRef,
		invoice.JournalID,
		invoice.CancelledAt,
		invoice.CancelReason,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.Pool.QueryRow(ctx, `SELECT status FROM invoices WHERE invoice_id = $1`, invoice.InvoiceID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoice.InvoiceID)
		}
		if err != nil {
			return fmt.Errorf("failed to check invoice %s: %w", invoice.InvoiceID, err)
		}
		return fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, invoice.InvoiceID, status)
	}
	return nil
}
