package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/utils/accounting"
	"github.com/jakartamandarin/jm_finance/internal/utils/pagination"
)

// JournalRepository implements portsrepo.JournalRepositoryFacade.
type JournalRepository struct {
	store *Store
}

var _ portsrepo.JournalRepositoryFacade = (*JournalRepository)(nil)

// SaveJournal locks every touched account, checks the whole unit, then applies it.
// Nothing is written when any check fails.
func (r *JournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	keys := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		keys = append(keys, accountKey(id))
	}
	for _, l := range lines {
		keys = append(keys, accountKey(l.AccountID))
	}
	unlock := r.store.locks.LockAll(keys)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.journals[journal.JournalID]; exists {
		return fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, journal.JournalID)
	}
	for id := range balanceChanges {
		if _, ok := s.accounts[id]; !ok {
			return fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, id)
		}
	}
	for _, l := range lines {
		if _, ok := s.accounts[l.AccountID]; !ok {
			return fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, l.AccountID)
		}
	}
	var original domain.Journal
	if journal.OriginalJournalID != nil {
		var ok bool
		original, ok = s.journals[*journal.OriginalJournalID]
		if !ok {
			return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, *journal.OriginalJournalID)
		}
		if original.Status != domain.Posted {
			return fmt.Errorf("%w: journal %s is %s", apperrors.ErrConflict, original.JournalID, original.Status)
		}
	}

	// Running balances follow the lines in order, starting from the current balances.
	running := make(map[string]decimal.Decimal, len(balanceChanges))
	stored := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		acc := s.accounts[l.AccountID]
		if _, ok := running[l.AccountID]; !ok {
			running[l.AccountID] = acc.Balance
		}
		signed, err := accounting.CalculateSignedAmount(l, acc.AccountType)
		if err != nil {
			return err
		}
		running[l.AccountID] = running[l.AccountID].Add(signed)
		l.RunningBalance = running[l.AccountID]
		l.JournalID = journal.JournalID
		l.JournalDate = journal.JournalDate
		l.JournalDescription = journal.Description
		stored[i] = l
	}

	for id, delta := range balanceChanges {
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = journal.CreatedAt
		acc.LastUpdatedBy = journal.CreatedBy
		s.accounts[id] = acc
	}
	journal.Lines = nil
	s.journals[journal.JournalID] = journal
	s.journalLines[journal.JournalID] = stored
	for _, l := range stored {
		s.accountLines[l.AccountID] = append(s.accountLines[l.AccountID], l)
	}
	if journal.OriginalJournalID != nil {
		reversing := journal.JournalID
		original.Status = domain.Reversed
		original.ReversingJournalID = &reversing
		original.LastUpdatedAt = journal.CreatedAt
		original.LastUpdatedBy = journal.CreatedBy
		s.journals[original.JournalID] = original
	}
	return nil
}

func (r *JournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	j, ok := r.store.journals[journalID]
	if !ok {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
	}
	return &j, nil
}

func (r *JournalRepository) ListJournals(ctx context.Context, from, to *time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &c
	}

	r.store.mu.RLock()
	all := make([]domain.Journal, 0, len(r.store.journals))
	for _, j := range r.store.journals {
		if !inRange(j.JournalDate, from, to) {
			continue
		}
		if cursor != nil && !cursor.After(j.JournalDate, j.CreatedAt, j.JournalID) {
			continue
		}
		all = append(all, j)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(a, b int) bool {
		x, y := all[a], all[b]
		if !x.JournalDate.Equal(y.JournalDate) {
			return x.JournalDate.After(y.JournalDate)
		}
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.After(y.CreatedAt)
		}
		return x.JournalID > y.JournalID
	})

	if len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Cursor{Date: last.JournalDate, CreatedAt: last.CreatedAt, ID: last.JournalID})
	return page, &token, nil
}

func (r *JournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.JournalLine(nil), r.store.journalLines[journalID]...), nil
}

func (r *JournalRepository) ListLinesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalLine, error) {
	r.store.mu.RLock()
	lines := make([]domain.JournalLine, 0, len(r.store.accountLines[accountID]))
	for _, l := range r.store.accountLines[accountID] {
		if inRange(l.JournalDate, from, to) {
			lines = append(lines, l)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].JournalDate.Before(lines[b].JournalDate)
	})
	return lines, nil
}

// ReportingRepository implements portsrepo.ReportingRepository.
type ReportingRepository struct {
	store *Store
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

func (r *ReportingRepository) GetAccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byAccount := make(map[string]*domain.AccountActivity)
	for accountID, lines := range r.store.accountLines {
		for _, l := range lines {
			if l.JournalDate.Before(from) || l.JournalDate.After(to) {
				continue
			}
			a, ok := byAccount[accountID]
			if !ok {
				a = &domain.AccountActivity{AccountID: accountID, Debit: decimal.Zero, Credit: decimal.Zero}
				byAccount[accountID] = a
			}
			a.Debit = a.Debit.Add(l.Debit)
			a.Credit = a.Credit.Add(l.Credit)
		}
	}

	out := make([]domain.AccountActivity, 0, len(byAccount))
	for _, a := range byAccount {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}
