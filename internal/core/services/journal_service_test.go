package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

type JournalServiceTestSuite struct {
	suite.Suite
	h *harness
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.h = newHarness(suite.T(), false)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (suite *JournalServiceTestSuite) entry(lines ...dto.JournalLineRequest) dto.PostEntryRequest {
	return dto.PostEntryRequest{Date: date(2024, time.March, 1), Description: "Kursus Maret", Lines: lines}
}

func (suite *JournalServiceTestSuite) TestPostEntry_UpdatesBalances() {
	h := suite.h
	journal, err := h.svc.Journal.PostEntry(h.ctx, suite.entry(
		dto.JournalLineRequest{AccountID: h.id("1-1100"), Debit: d("500000")},
		dto.JournalLineRequest{AccountID: h.id("4-1000"), Credit: d("500000")},
	), "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, journal.Status)
	suite.True(journal.Amount.Equal(d("500000")))
	suite.Len(journal.Lines, 2)
	suite.Equal("tester", journal.CreatedBy)
	suite.True(h.balance("1-1100").Equal(d("500000")))
	suite.True(h.balance("4-1000").Equal(d("500000")))

	stored, err := h.svc.Journal.GetJournalByID(h.ctx, journal.JournalID)
	suite.Require().NoError(err)
	suite.Len(stored.Lines, 2)
	suite.Equal(1, stored.Lines[0].LineNo)
}

func (suite *JournalServiceTestSuite) TestPostEntry_RejectionsLeaveBalancesUntouched() {
	h := suite.h
	cash, income := h.id("1-1100"), h.id("4-1000")

	inactive := false
	_, err := h.svc.Account.UpdateAccount(h.ctx, h.id("5-3000"), dto.UpdateAccountRequest{IsActive: &inactive}, "tester")
	suite.Require().NoError(err)

	tests := []struct {
		name    string
		req     dto.PostEntryRequest
		wantErr error
	}{
		{
			name:    "no lines",
			req:     suite.entry(),
			wantErr: apperrors.ErrEmptyEntry,
		},
		{
			name: "unbalanced",
			req: suite.entry(
				dto.JournalLineRequest{AccountID: cash, Debit: d("100")},
				dto.JournalLineRequest{AccountID: income, Credit: d("99.99")},
			),
			wantErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "unknown account",
			req: suite.entry(
				dto.JournalLineRequest{AccountID: cash, Debit: d("100")},
				dto.JournalLineRequest{AccountID: "does-not-exist", Credit: d("100")},
			),
			wantErr: apperrors.ErrUnknownAccount,
		},
		{
			name: "both sides on one line",
			req: suite.entry(
				dto.JournalLineRequest{AccountID: cash, Debit: d("100"), Credit: d("100")},
			),
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "inactive account",
			req: suite.entry(
				dto.JournalLineRequest{AccountID: h.id("5-3000"), Debit: d("100")},
				dto.JournalLineRequest{AccountID: cash, Credit: d("100")},
			),
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "missing description",
			req: dto.PostEntryRequest{Date: date(2024, time.March, 1), Lines: []dto.JournalLineRequest{
				{AccountID: cash, Debit: d("100")},
				{AccountID: income, Credit: d("100")},
			}},
			wantErr: apperrors.ErrValidation,
		},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := h.svc.Journal.PostEntry(h.ctx, tt.req, "tester")
			suite.ErrorIs(err, tt.wantErr)
		})
	}

	suite.True(h.balance("1-1100").IsZero())
	suite.True(h.balance("4-1000").IsZero())
	page, err := h.svc.Journal.ListJournals(h.ctx, dto.ListJournalsParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Empty(page.Journals)
}

func (suite *JournalServiceTestSuite) TestPostEntry_WithPPN() {
	h := suite.h
	req := suite.entry(
		dto.JournalLineRequest{AccountID: h.id("1-1300"), Debit: d("1000000")},
		dto.JournalLineRequest{AccountID: h.id("4-1000"), Credit: d("1000000")},
	)
	req.IncludePPN = true

	journal, err := h.svc.Journal.PostEntry(h.ctx, req, "tester")
	suite.Require().NoError(err)
	suite.Len(journal.Lines, 4)
	suite.True(journal.Amount.Equal(d("1110000")))

	debits, credits := domain.SumSides(journal.Lines)
	suite.True(debits.Equal(credits))
	suite.True(h.balance("1-1300").Equal(d("1110000")))
	suite.True(h.balance("2-1200").Equal(d("110000")))
	suite.True(h.balance("4-1000").Equal(d("1000000")))
}

func (suite *JournalServiceTestSuite) TestReverseJournal() {
	h := suite.h
	original := h.post(date(2024, time.March, 2), "1-1100", "4-1000", "250000")

	reversal, err := h.svc.Journal.ReverseJournal(h.ctx, original.JournalID, "auditor")
	suite.Require().NoError(err)
	suite.Require().NotNil(reversal.OriginalJournalID)
	suite.Equal(original.JournalID, *reversal.OriginalJournalID)
	suite.True(h.balance("1-1100").IsZero())
	suite.True(h.balance("4-1000").IsZero())

	stored, err := h.svc.Journal.GetJournalByID(h.ctx, original.JournalID)
	suite.Require().NoError(err)
	suite.Equal(domain.Reversed, stored.Status)
	suite.Require().NotNil(stored.ReversingJournalID)
	suite.Equal(reversal.JournalID, *stored.ReversingJournalID)

	_, err = h.svc.Journal.ReverseJournal(h.ctx, original.JournalID, "auditor")
	suite.ErrorIs(err, apperrors.ErrConflict)
	_, err = h.svc.Journal.ReverseJournal(h.ctx, reversal.JournalID, "auditor")
	suite.ErrorIs(err, apperrors.ErrConflict)
	_, err = h.svc.Journal.ReverseJournal(h.ctx, "missing", "auditor")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestPostEntry_SameRequestTwiceBooksTwice() {
	h := suite.h
	req := suite.entry(
		dto.JournalLineRequest{AccountID: h.id("1-1100"), Debit: d("75000")},
		dto.JournalLineRequest{AccountID: h.id("4-1000"), Credit: d("75000")},
	)

	first, err := h.svc.Journal.PostEntry(h.ctx, req, "cashier")
	suite.Require().NoError(err)
	second, err := h.svc.Journal.PostEntry(h.ctx, req, "cashier")
	suite.Require().NoError(err)
	suite.NotEqual(first.JournalID, second.JournalID)
	suite.True(h.balance("1-1100").Equal(d("150000")))
	suite.True(h.balance("4-1000").Equal(d("150000")))

	for _, j := range []*domain.Journal{first, second} {
		_, err := h.svc.Journal.ReverseJournal(h.ctx, j.JournalID, "auditor")
		suite.Require().NoError(err)
		_, err = h.svc.Journal.ReverseJournal(h.ctx, j.JournalID, "auditor")
		suite.ErrorIs(err, apperrors.ErrConflict)
	}
	suite.True(h.balance("1-1100").IsZero())
	suite.True(h.balance("4-1000").IsZero())
}

func (suite *JournalServiceTestSuite) TestBalanceEqualsSumOfSignedLines() {
	h := suite.h
	h.post(date(2024, time.March, 1), "1-1100", "4-1000", "300000")
	h.post(date(2024, time.March, 2), "5-1000", "1-1100", "120000.50")
	h.post(date(2024, time.March, 3), "1-1200", "1-1100", "50000")

	lines, err := h.svc.Journal.ListLinesByAccount(h.ctx, h.id("1-1100"), nil, nil)
	suite.Require().NoError(err)
	suite.Len(lines, 3)

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Debit).Sub(l.Credit)
	}
	suite.True(sum.Equal(h.balance("1-1100")))
	suite.True(lines[len(lines)-1].RunningBalance.Equal(d("129999.50")))
}

func (suite *JournalServiceTestSuite) TestListLinesByAccount_RunningBalanceWithFrom() {
	h := suite.h
	h.post(date(2024, time.February, 1), "1-1100", "4-1000", "100")
	h.post(date(2024, time.March, 1), "1-1100", "4-1000", "200")

	from := date(2024, time.March, 1)
	lines, err := h.svc.Journal.ListLinesByAccount(h.ctx, h.id("1-1100"), &from, nil)
	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.True(lines[0].RunningBalance.Equal(d("300")))

	_, err = h.svc.Journal.ListLinesByAccount(h.ctx, "missing", nil, nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestListJournals_Pagination() {
	h := suite.h
	for day := 1; day <= 5; day++ {
		h.post(date(2024, time.March, day), "1-1100", "4-1000", "1000")
	}

	seen := map[string]bool{}
	var token *string
	var pages []int
	for {
		page, err := h.svc.Journal.ListJournals(h.ctx, dto.ListJournalsParams{Limit: 2, NextToken: token})
		suite.Require().NoError(err)
		pages = append(pages, len(page.Journals))
		for _, j := range page.Journals {
			suite.False(seen[j.JournalID], "journal %s returned twice", j.JournalID)
			seen[j.JournalID] = true
		}
		if page.NextToken == nil {
			break
		}
		token = page.NextToken
	}
	suite.Equal([]int{2, 2, 1}, pages)
	suite.Len(seen, 5)

	bad := "not-a-token"
	_, err := h.svc.Journal.ListJournals(h.ctx, dto.ListJournalsParams{Limit: 2, NextToken: &bad})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestConcurrentPostsKeepLedgerBalanced() {
	h := suite.h
	cash, income, expense := h.id("1-1100"), h.id("4-1000"), h.id("5-2000")

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lines := []dto.JournalLineRequest{
				{AccountID: cash, Debit: d("1000")},
				{AccountID: income, Credit: d("1000")},
			}
			if i%2 == 1 {
				lines = []dto.JournalLineRequest{
					{AccountID: expense, Debit: d("250")},
					{AccountID: cash, Credit: d("250")},
				}
			}
			_, err := h.svc.Journal.PostEntry(h.ctx, dto.PostEntryRequest{
				Date: date(2024, time.March, 1), Description: "concurrent", Lines: lines,
			}, "tester")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.NoError(err)
	}

	suite.True(h.balance("1-1100").Equal(d("15000")))
	suite.True(h.balance("4-1000").Equal(d("20000")))
	suite.True(h.balance("5-2000").Equal(d("5000")))

	rows, err := h.svc.Reporting.TrialBalance(h.ctx, nil)
	suite.Require().NoError(err)
	debits, credits := decimal.Zero, decimal.Zero
	for _, r := range rows {
		debits = debits.Add(r.Debit)
		credits = credits.Add(r.Credit)
	}
	suite.True(debits.Equal(credits))
}
