package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
)

type CreditServiceTestSuite struct {
	suite.Suite
	h        *harness
	lowCount atomic.Int32
	bundle   *domain.CreditPackage
	satuan   *domain.CreditPackage
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.h = newHarness(suite.T(), true)
	suite.lowCount.Store(0)
	suite.h.bus.Subscribe(domain.EventLowBalanceReached, func(ctx context.Context, e events.Event) error {
		suite.lowCount.Add(1)
		return nil
	})

	var err error
	suite.bundle, err = suite.h.svc.Credit.CreatePackage(suite.h.ctx, dto.CreatePackageRequest{
		Name: "Paket 10 Jam", Price: d("1500000"), CreditHours: d("10"), PackageType: domain.PackageBundle,
	}, "admin")
	suite.Require().NoError(err)
	suite.satuan, err = suite.h.svc.Credit.CreatePackage(suite.h.ctx, dto.CreatePackageRequest{
		Name: "Kelas Satuan", Price: d("175000"), CreditHours: d("3"), PackageType: domain.PackageSatuan,
	}, "admin")
	suite.Require().NoError(err)
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

func (suite *CreditServiceTestSuite) deduct(student, hours string) (*domain.CreditTransaction, error) {
	return suite.h.svc.Credit.Deduct(suite.h.ctx, student, dto.DeductRequest{Hours: d(hours), ClassID: "class-1"}, "tutor")
}

func (suite *CreditServiceTestSuite) TestCreatePackage_Validation() {
	_, err := suite.h.svc.Credit.CreatePackage(suite.h.ctx, dto.CreatePackageRequest{
		Name: "Nol", Price: d("1"), CreditHours: d("0"), PackageType: domain.PackageBundle,
	}, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)

	pkgs, err := suite.h.svc.Credit.ListPackages(suite.h.ctx, true)
	suite.Require().NoError(err)
	suite.Len(pkgs, 2)
}

func (suite *CreditServiceTestSuite) TestOpenAccountAndBalance() {
	h := suite.h
	bal, err := h.svc.Credit.GetBalance(h.ctx, "unknown-student")
	suite.Require().NoError(err)
	suite.True(bal.IsZero())

	credit, err := h.svc.Credit.OpenAccount(h.ctx, "s1", d("4"), "admin")
	suite.Require().NoError(err)
	suite.True(credit.TotalCreditHours.Equal(d("4")))

	_, err = h.svc.Credit.OpenAccount(h.ctx, "s1", d("4"), "admin")
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	bal, err = h.svc.Credit.GetBalance(h.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(bal.Equal(d("4")))

	_, err = h.svc.Credit.GetStudentCredit(h.ctx, "unknown-student")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CreditServiceTestSuite) TestPurchase() {
	h := suite.h
	txn, err := h.svc.Credit.Purchase(h.ctx, "s1", dto.PurchaseRequest{PackageID: suite.bundle.PackageID}, "cashier")
	suite.Require().NoError(err)
	suite.Equal(domain.CreditPurchase, txn.Type)
	suite.True(txn.Hours.Equal(d("10")))
	suite.True(txn.Amount.Equal(d("1500000")))
	suite.True(txn.BalanceAfter.Equal(d("10")))

	_, err = h.svc.Credit.Purchase(h.ctx, "s1", dto.PurchaseRequest{PackageID: "missing"}, "cashier")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	inactive := false
	_, err = h.svc.Credit.UpdatePackage(h.ctx, suite.satuan.PackageID, dto.UpdatePackageRequest{IsActive: &inactive}, "admin")
	suite.Require().NoError(err)
	_, err = h.svc.Credit.Purchase(h.ctx, "s1", dto.PurchaseRequest{PackageID: suite.satuan.PackageID}, "cashier")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CreditServiceTestSuite) TestDeduct_InsufficientCreditChangesNothing() {
	h := suite.h
	_, err := h.svc.Credit.OpenAccount(h.ctx, "s1", d("1"), "admin")
	suite.Require().NoError(err)

	_, err = suite.deduct("s1", "1.5")
	suite.ErrorIs(err, apperrors.ErrInsufficientCredit)

	credit, err := h.svc.Credit.GetStudentCredit(h.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(credit.RemainingHours.Equal(d("1")))
	suite.Empty(credit.Transactions)

	_, err = suite.deduct("s1", "0")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CreditServiceTestSuite) TestRemainingEqualsGrantPlusTransactions() {
	h := suite.h
	_, err := h.svc.Credit.OpenAccount(h.ctx, "s1", d("2"), "admin")
	suite.Require().NoError(err)
	_, err = h.svc.Credit.Purchase(h.ctx, "s1", dto.PurchaseRequest{PackageID: suite.bundle.PackageID}, "cashier")
	suite.Require().NoError(err)
	_, err = suite.deduct("s1", "1.5")
	suite.Require().NoError(err)
	_, err = h.svc.Credit.Adjust(h.ctx, "s1", dto.AdjustRequest{Hours: d("-0.5"), Reason: "makeup class cancelled"}, "admin")
	suite.Require().NoError(err)
	_, err = h.svc.Credit.Adjust(h.ctx, "s1", dto.AdjustRequest{Hours: d("0"), Reason: "noop"}, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)

	credit, err := h.svc.Credit.GetStudentCredit(h.ctx, "s1")
	suite.Require().NoError(err)
	suite.Len(credit.Transactions, 3)
	suite.True(credit.RemainingHours.Equal(d("10")))
	suite.True(credit.ComputedBalance().Equal(credit.RemainingHours))
	suite.True(credit.Transactions[2].BalanceAfter.Equal(d("10")))
}

func (suite *CreditServiceTestSuite) TestLowBalanceAutoBillsBundleOnce() {
	h := suite.h
	_, err := h.svc.Credit.Purchase(h.ctx, "s1", dto.PurchaseRequest{PackageID: suite.bundle.PackageID}, "cashier")
	suite.Require().NoError(err)

	_, err = suite.deduct("s1", "8")
	suite.Require().NoError(err) // 10 -> 2, not below the threshold
	h.drain()
	suite.Equal(int32(0), suite.lowCount.Load())

	_, err = suite.deduct("s1", "0.5")
	suite.Require().NoError(err) // 2 -> 1.5 crosses
	_, err = suite.deduct("s1", "1")
	suite.Require().NoError(err) // already below, no second event
	h.drain()
	suite.Equal(int32(1), suite.lowCount.Load())

	invoices, err := h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s1"})
	suite.Require().NoError(err)
	suite.Require().Len(invoices, 1)
	inv := invoices[0]
	suite.Equal(suite.bundle.PackageID, inv.PackageID)
	suite.Equal(domain.InvoicePending, inv.Status)
	suite.True(inv.Amount.Equal(d("1500000")))
	suite.Equal("auto-billing", inv.CreatedBy)
	suite.Equal(date(2024, time.March, 22), inv.DueDate)

	// Topping up and running low again does not duplicate a pending bill.
	_, err = h.svc.Credit.Adjust(h.ctx, "s1", dto.AdjustRequest{Hours: d("5"), Reason: "goodwill"}, "admin")
	suite.Require().NoError(err)
	_, err = suite.deduct("s1", "5")
	suite.Require().NoError(err)
	h.drain()
	suite.Equal(int32(2), suite.lowCount.Load())
	invoices, err = h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s1"})
	suite.Require().NoError(err)
	suite.Len(invoices, 1)
}

func (suite *CreditServiceTestSuite) TestLowBalanceDoesNotRebillOverdueBundle() {
	h := suite.h
	_, err := h.svc.Credit.Purchase(h.ctx, "s4", dto.PurchaseRequest{PackageID: suite.bundle.PackageID}, "cashier")
	suite.Require().NoError(err)
	_, err = suite.deduct("s4", "9")
	suite.Require().NoError(err)
	h.drain()

	invoices, err := h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s4"})
	suite.Require().NoError(err)
	suite.Require().Len(invoices, 1)
	first := invoices[0]

	h.advance(10 * 24 * time.Hour)
	overdue, err := h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s4", Status: string(domain.InvoiceOverdue)})
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 1)

	_, err = h.svc.Credit.Adjust(h.ctx, "s4", dto.AdjustRequest{Hours: d("5"), Reason: "makeup class"}, "admin")
	suite.Require().NoError(err)
	_, err = suite.deduct("s4", "5")
	suite.Require().NoError(err)
	h.drain()
	suite.Equal(int32(2), suite.lowCount.Load())

	invoices, err = h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s4"})
	suite.Require().NoError(err)
	suite.Require().Len(invoices, 1)
	suite.Equal(first.InvoiceID, invoices[0].InvoiceID)
}

func (suite *CreditServiceTestSuite) TestLowBalanceNeverBillsSatuan() {
	h := suite.h
	_, err := h.svc.Credit.Purchase(h.ctx, "s2", dto.PurchaseRequest{PackageID: suite.satuan.PackageID}, "cashier")
	suite.Require().NoError(err)
	_, err = suite.deduct("s2", "2")
	suite.Require().NoError(err)
	h.drain()

	suite.Equal(int32(1), suite.lowCount.Load())
	invoices, err := h.svc.Invoice.ListInvoices(h.ctx, dto.ListInvoicesParams{StudentID: "s2"})
	suite.Require().NoError(err)
	suite.Empty(invoices)
}

func (suite *CreditServiceTestSuite) TestConcurrentDeductionsNeverOverdraw() {
	h := suite.h
	_, err := h.svc.Credit.OpenAccount(h.ctx, "s3", d("10"), "admin")
	suite.Require().NoError(err)

	const attempts = 25
	var wg sync.WaitGroup
	var ok, refused atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.deduct("s3", "1")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperrors.ErrInsufficientCredit):
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	suite.Equal(int32(10), ok.Load())
	suite.Equal(int32(attempts-10), refused.Load())
	bal, err := h.svc.Credit.GetBalance(h.ctx, "s3")
	suite.Require().NoError(err)
	suite.True(bal.IsZero())
	h.drain()
	suite.Equal(int32(1), suite.lowCount.Load())
}
