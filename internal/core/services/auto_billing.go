package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
)

// AutoBillingActor is recorded as the creator of auto-billed invoices.
const AutoBillingActor = "auto-billing"

// Subscriber is the part of the event bus AutoBilling registers with.
type Subscriber interface {
	Subscribe(eventType string, h events.Handler)
}

// AutoBilling issues an invoice for a student's last BUNDLE package when their
// credit runs low. SATUAN packages are never re-billed.
type AutoBilling struct {
	BaseService
	packages portsrepo.CreditPackageRepository
	invoices portssvc.InvoiceSvcFacade
}

// NewAutoBilling creates the subscriber.
func NewAutoBilling(packages portsrepo.CreditPackageRepository, invoices portssvc.InvoiceSvcFacade) *AutoBilling {
	return &AutoBilling{packages: packages, invoices: invoices}
}

// Register subscribes to LowBalanceReached.
func (a *AutoBilling) Register(bus Subscriber) {
	bus.Subscribe(domain.EventLowBalanceReached, a.HandleLowBalance)
}

// HandleLowBalance bills the student's last package unless it is not a bundle or an
// unpaid invoice for it already exists, whether pending or overdue.
func (a *AutoBilling) HandleLowBalance(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(domain.LowBalanceReached)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.LastPackageID == "" {
		a.LogDebug(ctx, "Low balance without a purchased package, nothing to bill",
			slog.String("student_id", payload.StudentID))
		return nil
	}

	pkg, err := a.packages.FindPackageByID(ctx, payload.LastPackageID)
	if err != nil {
		return fmt.Errorf("loading package %s: %w", payload.LastPackageID, err)
	}
	if pkg.PackageType != domain.PackageBundle || !pkg.IsActive {
		return nil
	}

	// Overdue invoices are stored as pending and still count as unpaid.
	existing, err := a.invoices.ListInvoices(ctx, dto.ListInvoicesParams{StudentID: payload.StudentID})
	if err != nil {
		return err
	}
	for _, inv := range existing {
		if inv.Status == domain.InvoicePending && inv.PackageID == pkg.PackageID {
			a.LogDebug(ctx, "Bundle already billed",
				slog.String("student_id", payload.StudentID),
				slog.String("invoice_id", inv.InvoiceID))
			return nil
		}
	}

	inv, err := a.invoices.BillPackage(ctx, payload.StudentID, pkg, AutoBillingActor)
	if err != nil {
		return err
	}
	a.LogInfo(ctx, "Auto-billed bundle on low balance",
		slog.String("student_id", payload.StudentID),
		slog.String("package_id", pkg.PackageID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("remaining_hours", payload.RemainingHours.String()))
	return nil
}
