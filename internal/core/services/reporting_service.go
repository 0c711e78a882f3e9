package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// DefaultTaxAccountPattern selects the accounts summed by TaxReport.
const DefaultTaxAccountPattern = `(?i)ppn|pajak|tax`

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
	taxPattern    *regexp.Regexp
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithTaxAccountPattern replaces DefaultTaxAccountPattern.
func WithTaxAccountPattern(re *regexp.Regexp) ReportingServiceOption {
	return func(s *reportingService) {
		if re != nil {
			s.taxPattern = re
		}
	}
}

// WithReportingBase sets metrics and clock.
func WithReportingBase(base BaseService) ReportingServiceOption {
	return func(s *reportingService) {
		s.BaseService = base
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(accountRepo portsrepo.AccountReader, repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		accountRepo:   accountRepo,
		reportingRepo: repo,
		taxPattern:    regexp.MustCompile(DefaultTaxAccountPattern),
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

type accountBalance struct {
	domain.Account
	amount decimal.Decimal // on the account's normal side
}

// balances returns every account with its balance. A nil asOf uses the stored balances;
// otherwise balances are rebuilt from activity up to the end of asOf's day.
func (s *reportingService) balances(ctx context.Context, asOf *time.Time) ([]accountBalance, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	out := make([]accountBalance, len(accounts))
	if asOf == nil {
		for i, acc := range accounts {
			out[i] = accountBalance{Account: acc, amount: acc.Balance}
		}
		return out, nil
	}

	activity, err := s.activity(ctx, time.Time{}, endOfDay(*asOf))
	if err != nil {
		return nil, err
	}
	for i, acc := range accounts {
		out[i] = accountBalance{Account: acc, amount: netOnNormalSide(acc.AccountType, activity[acc.AccountID])}
	}
	return out, nil
}

func (s *reportingService) activity(ctx context.Context, from, to time.Time) (map[string]domain.AccountActivity, error) {
	rows, err := s.reportingRepo.GetAccountActivity(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account activity",
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve account activity: %w", err)
	}
	byAccount := make(map[string]domain.AccountActivity, len(rows))
	for _, r := range rows {
		byAccount[r.AccountID] = r
	}
	return byAccount, nil
}

func netOnNormalSide(t domain.AccountType, a domain.AccountActivity) decimal.Decimal {
	if t.DebitNormal() {
		return a.Debit.Sub(a.Credit)
	}
	return a.Credit.Sub(a.Debit)
}

// TrialBalance lists every account with a non-zero balance on the side it sits on.
func (s *reportingService) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	balances, err := s.balances(ctx, asOf)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TrialBalanceRow, 0, len(balances))
	for _, b := range balances {
		if b.amount.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   b.AccountID,
			Code:        b.Code,
			AccountName: b.Name,
			AccountType: b.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		// A positive balance sits on the normal side; a negative one on the other.
		if b.AccountType.DebitNormal() == b.amount.IsPositive() {
			row.Debit = b.amount.Abs()
		} else {
			row.Credit = b.amount.Abs()
		}
		rows = append(rows, row)
	}

	s.LogInfo(ctx, "Trial balance report generated successfully", slog.Int("row_count", len(rows)))
	return rows, nil
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", apperrors.ErrValidation)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	activity, err := s.activity(ctx, from, endOfDay(to))
	if err != nil {
		return nil, err
	}

	report := &domain.PAndLReport{
		From:          from,
		To:            to,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, acc := range accounts {
		a, ok := activity[acc.AccountID]
		if !ok {
			continue
		}
		amount := domain.AccountAmount{
			AccountID: acc.AccountID,
			Code:      acc.Code,
			Name:      acc.Name,
			NetAmount: netOnNormalSide(acc.AccountType, a),
		}
		switch acc.AccountType {
		case domain.Income:
			report.Revenue = append(report.Revenue, amount)
			report.TotalRevenue = report.TotalRevenue.Add(amount.NetAmount)
		case domain.Expense:
			report.Expenses = append(report.Expenses, amount)
			report.TotalExpenses = report.TotalExpenses.Add(amount.NetAmount)
		}
	}
	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Profit and loss report generated successfully",
		slog.String("from", from.Format(time.RFC3339)),
		slog.String("to", to.Format(time.RFC3339)),
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	return report, nil
}

// BalanceSheet groups balances by type. Income less expense is shown as current
// earnings inside equity, so the sheet balances without a closing entry.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	balances, err := s.balances(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		CurrentEarnings:  decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, b := range balances {
		amount := domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, NetAmount: b.amount}
		switch b.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(b.amount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(b.amount)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(b.amount)
		case domain.Income:
			report.CurrentEarnings = report.CurrentEarnings.Add(b.amount)
		case domain.Expense:
			report.CurrentEarnings = report.CurrentEarnings.Sub(b.amount)
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.CurrentEarnings)

	if !report.IsBalanced() {
		s.LogWarn(ctx, fmt.Errorf("assets %s, liabilities plus equity %s", report.TotalAssets,
			report.TotalLiabilities.Add(report.TotalEquity)), "Balance sheet does not balance")
	}
	s.LogInfo(ctx, "Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets)),
		slog.Int("liability_accounts", len(report.Liabilities)),
		slog.Int("equity_accounts", len(report.Equity)))
	return report, nil
}

// TaxReport sums the balances of accounts whose name or code matches the tax pattern.
func (s *reportingService) TaxReport(ctx context.Context, asOf *time.Time) (*domain.TaxReport, error) {
	balances, err := s.balances(ctx, asOf)
	if err != nil {
		return nil, err
	}
	report := &domain.TaxReport{
		Pattern:  s.taxPattern.String(),
		Accounts: []domain.AccountAmount{},
		Total:    decimal.Zero,
	}
	for _, b := range balances {
		if !s.taxPattern.MatchString(b.Name) && !s.taxPattern.MatchString(b.Code) {
			continue
		}
		report.Accounts = append(report.Accounts, domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, NetAmount: b.amount})
		report.Total = report.Total.Add(b.amount)
	}
	return report, nil
}
