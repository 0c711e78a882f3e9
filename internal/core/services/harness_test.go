package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jakartamandarin/jm_finance/internal/adapters/database/memory"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
	"github.com/jakartamandarin/jm_finance/internal/platform/config"
	"github.com/jakartamandarin/jm_finance/internal/seed"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		SnowflakeNode:            1,
		OpeningBalanceEquityCode: "3-9000",
		CashAccountCode:          "1-1100",
		TuitionIncomeCode:        "4-1000",
		PPNRate:                  d("0.11"),
		PPNReceivableAccountCode: "1-1300",
		PPNOutputAccountCode:     "2-1200",
		TaxAccountPattern:        services.DefaultTaxAccountPattern,
		LowBalanceThresholdHours: d("2"),
		AutoBillingDueDays:       7,
		ReconDateWindowDays:      3,
		ReconAmountEpsilon:       decimal.Zero,
	}
}

// harness is a fully wired service container over the memory store with the default
// chart of accounts seeded and a controllable clock.
type harness struct {
	t     *testing.T
	ctx   context.Context
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer
	bus   *events.Bus

	clockMu sync.Mutex
	now     time.Time
}

func newHarness(t *testing.T, withBus bool) *harness {
	t.Helper()
	return newHarnessWithRepos(t, withBus, memory.NewRepositoryProvider(memory.NewStore()))
}

func newHarnessWithRepos(t *testing.T, withBus bool, repos portsrepo.RepositoryProvider) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		ctx:   context.Background(),
		repos: repos,
		now:   time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
	}
	deps := services.Dependencies{Clock: h.clock}
	if withBus {
		h.bus = events.NewBus(64)
		h.bus.Subscribe(barrierEvent, func(ctx context.Context, e events.Event) error {
			close(e.Payload.(chan struct{}))
			return nil
		})
		deps.Bus = h.bus
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = h.bus.Close(ctx)
		})
	}
	svc, err := services.NewServiceContainer(testConfig(), h.repos, deps)
	require.NoError(t, err)
	h.svc = svc

	_, err = seed.Apply(h.ctx, svc.Account, seed.DefaultChart(), "seed")
	require.NoError(t, err)
	return h
}

func (h *harness) clock() time.Time {
	h.clockMu.Lock()
	defer h.clockMu.Unlock()
	return h.now
}

func (h *harness) advance(dur time.Duration) {
	h.clockMu.Lock()
	defer h.clockMu.Unlock()
	h.now = h.now.Add(dur)
}

// id returns the account ID for a chart code.
func (h *harness) id(code string) string {
	h.t.Helper()
	acc, err := h.svc.Account.GetAccountByCode(h.ctx, code)
	require.NoError(h.t, err)
	return acc.AccountID
}

func (h *harness) balance(code string) decimal.Decimal {
	h.t.Helper()
	acc, err := h.svc.Account.GetAccountByCode(h.ctx, code)
	require.NoError(h.t, err)
	return acc.Balance
}

// post books amount from debitCode to creditCode.
func (h *harness) post(on time.Time, debitCode, creditCode, amount string) *domain.Journal {
	h.t.Helper()
	j, err := h.svc.Journal.PostEntry(h.ctx, dto.PostEntryRequest{
		Date:        on,
		Description: "test entry",
		Lines: []dto.JournalLineRequest{
			{AccountID: h.id(debitCode), Debit: d(amount)},
			{AccountID: h.id(creditCode), Credit: d(amount)},
		},
	}, "tester")
	require.NoError(h.t, err)
	return j
}

const barrierEvent = "test.barrier"

// drain waits until every event published so far has been handled.
func (h *harness) drain() {
	h.t.Helper()
	done := make(chan struct{})
	require.NoError(h.t, h.bus.Publish(h.ctx, events.Event{Type: barrierEvent, Payload: done}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		h.t.Fatal("event bus did not drain")
	}
}
