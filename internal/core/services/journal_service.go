package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
	"github.com/jakartamandarin/jm_finance/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// PPNSettings locates the accounts the PPN add-on posts to.
type PPNSettings struct {
	Rate           decimal.Decimal
	Scale          int32
	ReceivableCode string
	OutputCode     string
}

// journalService provides core journal and line operations.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	publisher   events.Publisher
	ppn         *PPNSettings
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalPublisher publishes JournalPosted after each commit.
func WithJournalPublisher(p events.Publisher) JournalServiceOption {
	return func(s *journalService) {
		s.publisher = p
	}
}

// WithPPN enables IncludePPN on posted entries.
func WithPPN(settings PPNSettings) JournalServiceOption {
	return func(s *journalService) {
		s.ppn = &settings
	}
}

// WithJournalBase sets metrics and clock.
func WithJournalBase(base BaseService) JournalServiceOption {
	return func(s *journalService) {
		s.BaseService = base
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry validates a draft, optionally adds PPN, and commits it with its balance changes.
// Every rejection happens before the repository is asked to write anything.
func (s *journalService) PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.Journal, error) {
	journal, err := s.postEntry(ctx, req, userID)
	if err != nil {
		s.Metrics.IncJournal("rejected")
		return nil, err
	}
	s.Metrics.IncJournal("posted")
	return journal, nil
}

func (s *journalService) postEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.Journal, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: journal description is required", apperrors.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: journal date is required", apperrors.ErrValidation)
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLine{
			LineNo:    i + 1,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Notes:     l.Notes,
		}
	}
	if err := accounting.ValidateBalance(lines); err != nil {
		s.LogWarn(ctx, err, "Journal entry rejected")
		return nil, err
	}

	accounts, err := s.loadActiveAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}

	if req.IncludePPN {
		lines, err = s.applyPPN(ctx, lines, accounts)
		if err != nil {
			return nil, err
		}
	}

	now := s.Now()
	journal := domain.Journal{
		JournalID:   uuid.NewString(),
		JournalDate: req.Date.UTC(),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.Posted,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	if err := s.commit(ctx, &journal, lines, accounts); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal posted successfully",
		slog.String("journal_id", journal.JournalID),
		slog.String("amount", journal.Amount.String()),
		slog.Int("line_count", len(journal.Lines)))
	return &journal, nil
}

// loadActiveAccounts resolves every account a draft touches. Unknown accounts fail with
// ErrUnknownAccount, inactive ones with ErrValidation.
func (s *journalService) loadActiveAccounts(ctx context.Context, lines []domain.JournalLine) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AccountID)
	}
	ids = uniqueStrings(ids)

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for journal")
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			err := fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, id)
			s.LogWarn(ctx, err, "Journal references unknown account")
			return nil, err
		}
		if !acc.IsActive {
			err := fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, id)
			s.LogWarn(ctx, err, "Journal references inactive account")
			return nil, err
		}
	}
	return accounts, nil
}

// applyPPN appends the PPN pair for INCOME credits and adds the PPN accounts to accounts.
func (s *journalService) applyPPN(ctx context.Context, lines []domain.JournalLine, accounts map[string]domain.Account) ([]domain.JournalLine, error) {
	if s.ppn == nil {
		return nil, fmt.Errorf("%w: PPN is not configured", apperrors.ErrValidation)
	}
	receivable, err := s.findPPNAccount(ctx, s.ppn.ReceivableCode)
	if err != nil {
		return nil, err
	}
	output, err := s.findPPNAccount(ctx, s.ppn.OutputCode)
	if err != nil {
		return nil, err
	}

	base := make(map[string]bool)
	for id, acc := range accounts {
		if acc.AccountType == domain.Income {
			base[id] = true
		}
	}
	withTax, tax, err := AddPPN(lines, PPNRule{
		Rate:                s.ppn.Rate,
		Scale:               s.ppn.Scale,
		ReceivableAccountID: receivable.AccountID,
		OutputAccountID:     output.AccountID,
		BaseAccountIDs:      base,
	})
	if err != nil {
		return nil, err
	}
	accounts[receivable.AccountID] = *receivable
	accounts[output.AccountID] = *output
	s.LogDebug(ctx, "PPN added to journal", slog.String("tax", tax.String()))
	return withTax, accounting.ValidateBalance(withTax)
}

func (s *journalService) findPPNAccount(ctx context.Context, code string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: PPN account %s does not exist", apperrors.ErrUnknownAccount, code)
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, fmt.Errorf("%w: PPN account %s is inactive", apperrors.ErrValidation, code)
	}
	return acc, nil
}

// commit stamps ids on the lines, computes balance changes and saves everything at once.
func (s *journalService) commit(ctx context.Context, journal *domain.Journal, lines []domain.JournalLine, accounts map[string]domain.Account) error {
	types := make(map[string]domain.AccountType, len(accounts))
	for id, acc := range accounts {
		types[id] = acc.AccountType
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].JournalID = journal.JournalID
		lines[i].LineNo = i + 1
		lines[i].JournalDate = journal.JournalDate
		lines[i].JournalDescription = journal.Description
	}
	changes, err := accounting.BalanceChanges(lines, types)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance changes", slog.String("journal_id", journal.JournalID))
		return err
	}
	debits, _ := domain.SumSides(lines)
	journal.Amount = debits

	if err := s.journalRepo.SaveJournal(ctx, *journal, lines, changes); err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("journal_id", journal.JournalID))
		return err
	}
	journal.Lines = lines

	s.publish(ctx, events.Event{
		Type: domain.EventJournalPosted,
		Payload: domain.JournalPosted{
			JournalID: journal.JournalID,
			Amount:    journal.Amount,
			PostedAt:  journal.CreatedAt,
		},
		OccurredAt: journal.CreatedAt,
	})
	return nil
}

func (s *journalService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish event", slog.String("event", event.Type))
	}
}

// ReverseJournal posts the mirror image of a POSTED journal and marks the original REVERSED.
func (s *journalService) ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	original, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to fetch journal for reversal", slog.String("journal_id", journalID))
		}
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is %s", apperrors.ErrConflict, journalID, original.Status)
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: journal %s is itself a reversal", apperrors.ErrConflict, journalID)
	}

	originalLines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for reversal", slog.String("journal_id", journalID))
		return nil, err
	}

	mirrored := make([]domain.JournalLine, len(originalLines))
	ids := make([]string, 0, len(originalLines))
	for i, l := range originalLines {
		mirrored[i] = domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Credit,
			Credit:    l.Debit,
			Notes:     "Reversal: " + l.Notes,
		}
		ids = append(ids, l.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, err
	}

	now := s.Now()
	origID := original.JournalID
	reversal := domain.Journal{
		JournalID:         uuid.NewString(),
		JournalDate:       original.JournalDate,
		Description:       "Reversal of Journal: " + original.Description,
		Status:            domain.Posted,
		OriginalJournalID: &origID,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	if err := s.commit(ctx, &reversal, mirrored, accounts); err != nil {
		return nil, err
	}

	s.Metrics.IncJournal("reversed")
	s.LogInfo(ctx, "Journal reversed",
		slog.String("original_journal_id", journalID),
		slog.String("reversal_journal_id", reversal.JournalID))
	return &reversal, nil
}

func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		}
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for journal", slog.String("journal_id", journalID))
		return nil, err
	}
	journal.Lines = lines
	s.LogDebug(ctx, "Journal retrieved", slog.String("journal_id", journalID), slog.Int("line_count", len(lines)))
	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, fmt.Errorf("%w: from is after to", apperrors.ErrValidation)
	}
	journals, nextToken, err := s.journalRepo.ListJournals(ctx, params.From, endOfDayPtr(params.To), params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals from repository")
		return nil, err
	}

	resp := &dto.ListJournalsResponse{
		Journals:  make([]dto.JournalResponse, len(journals)),
		NextToken: nextToken,
	}
	for i := range journals {
		resp.Journals[i] = dto.ToJournalResponse(&journals[i])
	}
	return resp, nil
}

// ListLinesByAccount returns the account's lines within the range. Running balances are
// cumulative from the account's first line, so they are correct when from is set.
func (s *journalService) ListLinesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalLine, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from is after to", apperrors.ErrValidation)
	}

	lines, err := s.journalRepo.ListLinesByAccount(ctx, accountID, nil, endOfDayPtr(to))
	if err != nil {
		s.LogError(ctx, err, "Failed to list lines by account", slog.String("account_id", accountID))
		return nil, err
	}

	running := decimal.Zero
	out := make([]domain.JournalLine, 0, len(lines))
	for _, l := range lines {
		signed, err := accounting.CalculateSignedAmount(l, account.AccountType)
		if err != nil {
			return nil, err
		}
		running = running.Add(signed)
		l.RunningBalance = running
		if from != nil && l.JournalDate.Before(*from) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// endOfDay returns the last instant of t's calendar day, so date-only bounds are inclusive.
func endOfDay(t time.Time) time.Time {
	return dayOf(t.UTC()).Add(24*time.Hour - time.Nanosecond)
}

func endOfDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := endOfDay(*t)
	return &end
}

func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	return result
}
