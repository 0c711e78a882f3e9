package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"

	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/events"
	"github.com/jakartamandarin/jm_finance/internal/metrics"
	"github.com/jakartamandarin/jm_finance/internal/platform/config"
)

// EventBus is what the container needs from the event bus.
type EventBus interface {
	events.Publisher
	Subscriber
}

// Dependencies are the shared runtime collaborators of every service.
type Dependencies struct {
	Bus     EventBus                // optional; without it no events are published
	Metrics *metrics.FinanceMetrics // optional
	Node    *snowflake.Node         // optional; created from cfg.SnowflakeNode when nil
	Clock   func() time.Time        // optional; time.Now when nil
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Dependencies) (*portssvc.ServiceContainer, error) {
	base := BaseService{Metrics: deps.Metrics, Clock: deps.Clock}

	node := deps.Node
	if node == nil {
		var err error
		node, err = snowflake.NewNode(cfg.SnowflakeNode)
		if err != nil {
			return nil, fmt.Errorf("failed to create invoice number generator: %w", err)
		}
	}
	taxPattern, err := regexp.Compile(cfg.TaxAccountPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tax account pattern: %w", err)
	}

	var publisher events.Publisher
	if deps.Bus != nil {
		publisher = deps.Bus
	}

	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithAccountBase(base),
		WithOpeningBalancePosting(repos.JournalRepo, cfg.OpeningBalanceEquityCode),
	)

	container.Journal = NewJournalService(
		repos.JournalRepo,
		repos.AccountRepo,
		WithJournalBase(base),
		WithJournalPublisher(publisher),
		WithPPN(PPNSettings{
			Rate:           cfg.PPNRate,
			ReceivableCode: cfg.PPNReceivableAccountCode,
			OutputCode:     cfg.PPNOutputAccountCode,
		}),
	)

	container.Credit = NewCreditService(
		repos.CreditRepo,
		WithCreditBase(base),
		WithCreditPublisher(publisher),
		WithLowBalanceThreshold(cfg.LowBalanceThresholdHours),
	)

	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		node,
		WithInvoiceBase(base),
		WithInvoicePublisher(publisher),
		WithInvoicePPNRate(cfg.PPNRate),
		WithAutoBillingDueDays(cfg.AutoBillingDueDays),
		WithPaymentPosting(container.Journal, container.Account, PaymentPosting{
			CashCode:   cfg.CashAccountCode,
			IncomeCode: cfg.TuitionIncomeCode,
			TaxCode:    cfg.PPNOutputAccountCode,
		}),
	)

	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.JournalRepo,
		repos.AccountRepo,
		WithReconciliationBase(base),
		WithMatchConfig(MatchConfig{
			DateWindowDays: cfg.ReconDateWindowDays,
			AmountEpsilon:  cfg.ReconAmountEpsilon,
			StrictTieBreak: cfg.ReconStrictTieBreak,
		}),
	)

	container.Reporting = NewReportingService(
		repos.AccountRepo,
		repos.ReportingRepo,
		WithReportingBase(base),
		WithTaxAccountPattern(taxPattern),
	)

	if deps.Bus != nil {
		billing := NewAutoBilling(repos.CreditRepo, container.Invoice)
		billing.BaseService = base
		billing.Register(deps.Bus)
	}

	return container, nil
}
