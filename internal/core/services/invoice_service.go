package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
	"github.com/jakartamandarin/jm_finance/internal/utils/keylock"
)

// DefaultAutoBillingDueDays is how long an auto-billed invoice stays pending before it is overdue.
const DefaultAutoBillingDueDays = 7

// PaymentPosting names the accounts an invoice payment is booked to.
type PaymentPosting struct {
	CashCode   string // debited with the invoice amount
	IncomeCode string // credited with the subtotal
	TaxCode    string // credited with the PPN, when any
}

type invoiceService struct {
	BaseService
	repo      portsrepo.InvoiceRepository
	numbers   *snowflake.Node
	ppnRate   decimal.Decimal
	dueDays   int
	publisher events.Publisher
	locks     *keylock.KeyLock

	journals portssvc.JournalWriterSvc
	accounts portssvc.AccountReaderSvc
	posting  PaymentPosting
}

// InvoiceServiceOption is a functional option for configuring the invoice service
type InvoiceServiceOption func(*invoiceService)

// WithInvoicePPNRate overrides DefaultPPNRate for invoices that include PPN.
func WithInvoicePPNRate(rate decimal.Decimal) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.ppnRate = rate
	}
}

// WithAutoBillingDueDays sets the due period of BillPackage invoices.
func WithAutoBillingDueDays(days int) InvoiceServiceOption {
	return func(s *invoiceService) {
		if days > 0 {
			s.dueDays = days
		}
	}
}

// WithInvoicePublisher publishes InvoicePaid events.
func WithInvoicePublisher(p events.Publisher) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.publisher = p
	}
}

// WithPaymentPosting books each payment as a journal entry.
func WithPaymentPosting(journals portssvc.JournalWriterSvc, accounts portssvc.AccountReaderSvc, posting PaymentPosting) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.journals = journals
		s.accounts = accounts
		s.posting = posting
	}
}

// WithInvoiceBase sets metrics and clock.
func WithInvoiceBase(base BaseService) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.BaseService = base
	}
}

// NewInvoiceService creates the invoice service. node generates invoice numbers.
func NewInvoiceService(repo portsrepo.InvoiceRepository, node *snowflake.Node, options ...InvoiceServiceOption) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		repo:    repo,
		numbers: node,
		ppnRate: DefaultPPNRate,
		dueDays: DefaultAutoBillingDueDays,
		locks:   keylock.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	items, addOns := req.ToDomainItems()
	inv := domain.Invoice{
		StudentID:   strings.TrimSpace(req.StudentID),
		StudentName: req.StudentName,
		Items:       items,
		AddOns:      addOns,
		IncludePPN:  req.IncludePPN,
		DueDate:     req.DueDate.UTC(),
	}
	return s.issue(ctx, inv, userID)
}

func (s *invoiceService) BillPackage(ctx context.Context, studentID string, pkg *domain.CreditPackage, userID string) (*domain.Invoice, error) {
	if pkg == nil {
		return nil, fmt.Errorf("%w: package is required", apperrors.ErrValidation)
	}
	inv := domain.Invoice{
		StudentID: studentID,
		Items: []domain.InvoiceItem{
			{Name: pkg.Name, Quantity: decimal.NewFromInt(1), Price: pkg.Price},
		},
		DueDate:   dayOf(s.Now()).AddDate(0, 0, s.dueDays),
		PackageID: pkg.PackageID,
	}
	return s.issue(ctx, inv, userID)
}

func (s *invoiceService) issue(ctx context.Context, inv domain.Invoice, userID string) (*domain.Invoice, error) {
	if inv.StudentID == "" {
		return nil, fmt.Errorf("%w: student ID is required", apperrors.ErrValidation)
	}
	if inv.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", apperrors.ErrValidation)
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("%w: an invoice needs at least one item", apperrors.ErrValidation)
	}
	for i, it := range inv.Items {
		if !it.Quantity.IsPositive() || it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d needs a positive quantity and a non-negative price", apperrors.ErrValidation, i+1)
		}
	}
	for i, a := range inv.AddOns {
		if a.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: add-on %d has a negative amount", apperrors.ErrValidation, i+1)
		}
	}

	inv.Subtotal = domain.InvoiceSubtotal(inv.Items, inv.AddOns)
	inv.TaxAmount = decimal.Zero
	if inv.IncludePPN {
		inv.TaxAmount = ComputePPN(inv.Subtotal, PPNRule{Rate: s.ppnRate})
	}
	inv.Amount = inv.Subtotal.Add(inv.TaxAmount)
	inv.InvoiceID = uuid.NewString()
	inv.InvoiceNumber = "INV-" + s.numbers.Generate().String()
	inv.Status = domain.InvoicePending
	inv.AuditFields = domain.NewAuditFields(userID, s.Now())

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("student_id", inv.StudentID))
		return nil, err
	}
	s.Metrics.IncInvoice(string(domain.InvoicePending))
	s.LogInfo(ctx, "Invoice issued",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("amount", inv.Amount.String()))
	return &inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.repo.FindInvoiceByID(ctx, invoiceID)
}

// ListInvoices filters on the effective status, so overdue and pending are told apart
// by the current time.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	want := domain.InvoiceStatus(params.Status)
	filter := portsrepo.InvoiceFilter{StudentID: params.StudentID, Status: want}
	if want == domain.InvoiceOverdue {
		filter.Status = domain.InvoicePending
	}
	invoices, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, err
	}
	if want != domain.InvoicePending && want != domain.InvoiceOverdue {
		return invoices, nil
	}

	now := s.Now()
	out := invoices[:0]
	for _, inv := range invoices {
		if inv.EffectiveStatus(now) == want {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest, userID string) (*domain.Invoice, error) {
	unlock := s.locks.Lock(invoiceID)
	defer unlock()

	inv, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoicePending {
		return nil, fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, inv.InvoiceNumber, inv.Status)
	}

	paidAt := s.Now()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	if s.journals != nil {
		journalID, err := s.postPayment(ctx, inv, paidAt, userID)
		if err != nil {
			return nil, err
		}
		inv.JournalID = journalID
	}

	inv.Status = domain.InvoicePaid
	inv.PaidAt = &paidAt
	inv.PaymentRef = req.PaymentRef
	inv.Touch(userID, s.Now())
	if err := s.repo.UpdateInvoice(ctx, *inv); err != nil {
		s.LogError(ctx, err, "Failed to mark invoice paid", slog.String("invoice_id", invoiceID))
		if inv.JournalID != "" {
			s.undoPayment(ctx, inv, userID)
		}
		return nil, err
	}
	s.Metrics.IncInvoice(string(domain.InvoicePaid))

	if s.publisher != nil {
		event := events.Event{
			Type:       domain.EventInvoicePaid,
			Payload:    domain.InvoicePaidEvent{InvoiceID: inv.InvoiceID, StudentID: inv.StudentID, Amount: inv.Amount, PaidAt: paidAt},
			OccurredAt: paidAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.LogError(ctx, err, "Failed to publish invoice paid event", slog.String("invoice_id", invoiceID))
		}
	}
	s.LogInfo(ctx, "Invoice paid", slog.String("invoice_id", invoiceID), slog.String("journal_id", inv.JournalID))
	return inv, nil
}

// undoPayment reverses a payment journal whose invoice could not be marked paid.
func (s *invoiceService) undoPayment(ctx context.Context, inv *domain.Invoice, userID string) {
	reversal, err := s.journals.ReverseJournal(ctx, inv.JournalID, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse payment of unpaid invoice",
			slog.String("invoice_id", inv.InvoiceID), slog.String("journal_id", inv.JournalID))
		return
	}
	s.LogInfo(ctx, "Reversed payment of unpaid invoice",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("journal_id", inv.JournalID),
		slog.String("reversal_id", reversal.JournalID))
}

// postPayment books cash against tuition income and PPN Keluaran.
func (s *invoiceService) postPayment(ctx context.Context, inv *domain.Invoice, paidAt time.Time, userID string) (string, error) {
	if !inv.Amount.IsPositive() {
		return "", nil
	}
	cash, err := s.accounts.GetAccountByCode(ctx, s.posting.CashCode)
	if err != nil {
		return "", s.postingAccountErr(s.posting.CashCode, err)
	}
	income, err := s.accounts.GetAccountByCode(ctx, s.posting.IncomeCode)
	if err != nil {
		return "", s.postingAccountErr(s.posting.IncomeCode, err)
	}

	lines := []dto.JournalLineRequest{
		{AccountID: cash.AccountID, Debit: inv.Amount, Notes: inv.InvoiceNumber},
	}
	if inv.Subtotal.IsPositive() {
		lines = append(lines, dto.JournalLineRequest{AccountID: income.AccountID, Credit: inv.Subtotal, Notes: inv.InvoiceNumber})
	}
	if inv.TaxAmount.IsPositive() {
		tax, err := s.accounts.GetAccountByCode(ctx, s.posting.TaxCode)
		if err != nil {
			return "", s.postingAccountErr(s.posting.TaxCode, err)
		}
		lines = append(lines, dto.JournalLineRequest{AccountID: tax.AccountID, Credit: inv.TaxAmount, Notes: "PPN " + inv.InvoiceNumber})
	}
	journal, err := s.journals.PostEntry(ctx, dto.PostEntryRequest{
		Date:        paidAt,
		Description: fmt.Sprintf("Payment of invoice %s", inv.InvoiceNumber),
		Lines:       lines,
	}, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to post invoice payment", slog.String("invoice_id", inv.InvoiceID))
		return "", err
	}
	return journal.JournalID, nil
}

func (s *invoiceService) postingAccountErr(code string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: payment account %s does not exist", apperrors.ErrUnknownAccount, code)
	}
	return err
}

func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string, req dto.CancelInvoiceRequest, userID string) (*domain.Invoice, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", apperrors.ErrValidation)
	}
	unlock := s.locks.Lock(invoiceID)
	defer unlock()

	inv, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoicePending {
		return nil, fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, inv.InvoiceNumber, inv.Status)
	}

	now := s.Now()
	inv.Status = domain.InvoiceCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Touch(userID, now)
	if err := s.repo.UpdateInvoice(ctx, *inv); err != nil {
		s.LogError(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.Metrics.IncInvoice(string(domain.InvoiceCancelled))
	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID), slog.String("reason", reason))
	return inv, nil
}
