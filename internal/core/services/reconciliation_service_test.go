package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	h *harness
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.h = newHarness(suite.T(), false)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func bankRow(day int, amount string, dir domain.Direction, ref string) dto.BankLineRequest {
	return dto.BankLineRequest{Date: date(2024, time.March, day), Amount: d(amount), Type: dir, Reference: ref, Description: ref}
}

func (suite *ReconciliationServiceTestSuite) TestReconcile() {
	h := suite.h
	bca := h.id("1-1200")
	h.post(date(2024, time.March, 1), "1-1200", "4-1000", "500000") // money in
	h.post(date(2024, time.March, 3), "5-1000", "1-1200", "120000") // money out
	h.post(date(2024, time.April, 2), "1-1200", "4-1000", "999")    // outside the period

	lines, err := h.svc.Reconciliation.ImportBankLines(h.ctx, dto.ImportBankLinesRequest{
		AccountID: bca,
		Lines: []dto.BankLineRequest{
			bankRow(2, "500000", domain.DirectionCredit, "TRF SPP"),
			bankRow(3, "125000", domain.DirectionDebit, "GAJI"),
			bankRow(10, "75000", domain.DirectionCredit, "BUNGA"),
		},
	}, "finance")
	suite.Require().NoError(err)
	suite.Len(lines, 3)
	for _, l := range lines {
		suite.NotEmpty(l.LineID)
		suite.Equal(bca, l.AccountID)
	}

	run, records, err := h.svc.Reconciliation.Reconcile(h.ctx, dto.ReconcileRequest{
		AccountID: bca,
		From:      date(2024, time.March, 1),
		To:        date(2024, time.March, 31),
	}, "finance")
	suite.Require().NoError(err)
	suite.Equal(1, run.MatchedCount)
	suite.Equal(2, run.UnmatchedCount)
	// bank 500000 - 125000 + 75000 against ledger 500000 - 120000
	suite.True(run.NetDifference.Equal(d("70000")), "net difference %s", run.NetDifference)
	suite.Equal("finance", run.CreatedBy)
	suite.Require().Len(records, 3)

	suite.Equal(domain.StatusMatched, records[0].Status)
	suite.Equal("TRF SPP", records[0].Reference)
	suite.NotEmpty(records[0].SystemRecordID)
	suite.Equal(domain.StatusUnmatched, records[1].Status)
	suite.True(records[1].Difference.Equal(d("5000")))
	suite.NotEmpty(records[1].SystemRecordID)
	suite.Equal(domain.StatusUnmatched, records[2].Status)
	suite.Empty(records[2].SystemRecordID)
	suite.True(records[2].Difference.Equal(d("75000")))

	storedRun, storedRecords, err := h.svc.Reconciliation.GetRun(h.ctx, run.RunID)
	suite.Require().NoError(err)
	suite.Equal(run.RunID, storedRun.RunID)
	suite.Len(storedRecords, 3)

	_, _, err = h.svc.Reconciliation.GetRun(h.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestImportBankCSV() {
	h := suite.h
	bca := h.id("1-1200")
	csv := strings.Join([]string{
		"date,description,reference,amount,type",
		"2024-03-04,Transfer masuk,TRF-1,1500000,credit",
		"2024-03-05,Biaya admin,ADM,6500,debit",
	}, "\n")

	first, err := h.svc.Reconciliation.ImportBankCSV(h.ctx, bca, strings.NewReader(csv), "finance")
	suite.Require().NoError(err)
	suite.Require().Len(first, 2)
	suite.True(first[0].Amount.Equal(d("1500000")))
	suite.Equal(domain.DirectionDebit, first[1].Type)

	// The same file imported twice gets distinct line ids.
	second, err := h.svc.Reconciliation.ImportBankCSV(h.ctx, bca, strings.NewReader(csv), "finance")
	suite.Require().NoError(err)
	suite.NotEqual(first[0].LineID, second[0].LineID)

	stored, err := h.svc.Reconciliation.ListBankLines(h.ctx, bca, date(2024, time.March, 1), date(2024, time.March, 5))
	suite.Require().NoError(err)
	suite.Len(stored, 4)

	_, err = h.svc.Reconciliation.ImportBankCSV(h.ctx, bca, strings.NewReader("date,amount\n2024-03-04,1"), "finance")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReconciliationServiceTestSuite) TestRejectsBadInput() {
	h := suite.h
	income := h.id("4-1000")

	_, err := h.svc.Reconciliation.ImportBankLines(h.ctx, dto.ImportBankLinesRequest{
		AccountID: income,
		Lines:     []dto.BankLineRequest{bankRow(1, "10", domain.DirectionCredit, "X")},
	}, "finance")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = h.svc.Reconciliation.ImportBankLines(h.ctx, dto.ImportBankLinesRequest{
		AccountID: h.id("1-1200"),
		Lines:     []dto.BankLineRequest{bankRow(1, "0", domain.DirectionCredit, "X")},
	}, "finance")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = h.svc.Reconciliation.Reconcile(h.ctx, dto.ReconcileRequest{
		AccountID: h.id("1-1200"),
		From:      date(2024, time.March, 31),
		To:        date(2024, time.March, 1),
	}, "finance")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = h.svc.Reconciliation.Reconcile(h.ctx, dto.ReconcileRequest{
		AccountID: "missing",
		From:      date(2024, time.March, 1),
		To:        date(2024, time.March, 31),
	}, "finance")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
