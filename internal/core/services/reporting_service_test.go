package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	h *harness
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.h = newHarness(suite.T(), false)
	h := suite.h
	h.post(date(2024, time.February, 20), "1-1100", "3-1000", "5000000") // owner capital
	h.post(date(2024, time.March, 1), "1-1100", "4-1000", "1000000")
	h.post(date(2024, time.March, 5), "5-1000", "1-1100", "300000")
	h.post(date(2024, time.April, 1), "1-1200", "4-2000", "200000")
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func sumTrialBalance(rows []domain.TrialBalanceRow) (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, r := range rows {
		debits = debits.Add(r.Debit)
		credits = credits.Add(r.Credit)
	}
	return debits, credits
}

func (suite *ReportingServiceTestSuite) TestTrialBalance() {
	h := suite.h
	rows, err := h.svc.Reporting.TrialBalance(h.ctx, nil)
	suite.Require().NoError(err)

	debits, credits := sumTrialBalance(rows)
	suite.True(debits.Equal(credits))
	suite.True(debits.Equal(d("6200000")), "debits %s", debits)
	suite.Len(rows, 6, "zero-balance accounts are left out")

	asOf := date(2024, time.March, 1)
	rows, err = h.svc.Reporting.TrialBalance(h.ctx, &asOf)
	suite.Require().NoError(err)
	debits, credits = sumTrialBalance(rows)
	suite.True(debits.Equal(credits))
	suite.True(debits.Equal(d("6000000")), "debits %s", debits)
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss() {
	h := suite.h
	report, err := h.svc.Reporting.ProfitAndLoss(h.ctx, date(2024, time.March, 1), date(2024, time.March, 31))
	suite.Require().NoError(err)
	suite.True(report.TotalRevenue.Equal(d("1000000")))
	suite.True(report.TotalExpenses.Equal(d("300000")))
	suite.True(report.NetProfit.Equal(d("700000")))
	suite.Len(report.Revenue, 1)
	suite.Len(report.Expenses, 1)

	// The end date is inclusive.
	report, err = h.svc.Reporting.ProfitAndLoss(h.ctx, date(2024, time.March, 1), date(2024, time.April, 1))
	suite.Require().NoError(err)
	suite.True(report.NetProfit.Equal(d("900000")))

	_, err = h.svc.Reporting.ProfitAndLoss(h.ctx, date(2024, time.April, 1), date(2024, time.March, 1))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet() {
	h := suite.h
	report, err := h.svc.Reporting.BalanceSheet(h.ctx, nil)
	suite.Require().NoError(err)
	suite.True(report.IsBalanced())
	suite.True(report.TotalAssets.Equal(d("5900000")))
	suite.True(report.CurrentEarnings.Equal(d("900000")))
	suite.True(report.TotalEquity.Equal(d("5900000")))

	asOf := date(2024, time.March, 31)
	report, err = h.svc.Reporting.BalanceSheet(h.ctx, &asOf)
	suite.Require().NoError(err)
	suite.True(report.IsBalanced())
	suite.True(report.TotalAssets.Equal(d("5700000")))
	suite.True(report.CurrentEarnings.Equal(d("700000")))
}

func (suite *ReportingServiceTestSuite) TestTaxReport() {
	h := suite.h
	req := dto.PostEntryRequest{
		Date:        date(2024, time.March, 10),
		Description: "Kursus dengan PPN",
		IncludePPN:  true,
		Lines: []dto.JournalLineRequest{
			{AccountID: h.id("1-1300"), Debit: d("2000000")},
			{AccountID: h.id("4-1000"), Credit: d("2000000")},
		},
	}
	_, err := h.svc.Journal.PostEntry(h.ctx, req, "tester")
	suite.Require().NoError(err)

	report, err := h.svc.Reporting.TaxReport(h.ctx, nil)
	suite.Require().NoError(err)
	suite.Require().Len(report.Accounts, 1)
	suite.Equal("2-1200", report.Accounts[0].Code)
	suite.Equal("PPN Keluaran", report.Accounts[0].Name)
	suite.True(report.Total.Equal(d("220000")))

	before := date(2024, time.March, 9)
	report, err = h.svc.Reporting.TaxReport(h.ctx, &before)
	suite.Require().NoError(err)
	suite.True(report.Total.IsZero())
}
