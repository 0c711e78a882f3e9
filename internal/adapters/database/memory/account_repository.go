package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
)

// AccountRepository implements portsrepo.AccountRepositoryFacade.
type AccountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acc, ok := r.store.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (r *AccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.accountByCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	acc := r.store.accounts[id]
	return &acc, nil
}

func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := r.store.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, accountType *domain.AccountType) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		if accountType != nil && acc.AccountType != *accountType {
			continue
		}
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.accountByCode[account.Code]; ok {
		return fmt.Errorf("%w %s", apperrors.ErrDuplicateAccountCode, account.Code)
	}
	if _, ok := r.store.accounts[account.AccountID]; ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	r.store.accounts[account.AccountID] = account
	r.store.accountByCode[account.Code] = account.AccountID
	return nil
}

func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	existing.Name = account.Name
	existing.Description = account.Description
	existing.IsActive = account.IsActive
	existing.LastUpdatedAt = account.LastUpdatedAt
	existing.LastUpdatedBy = account.LastUpdatedBy
	r.store.accounts[account.AccountID] = existing
	return nil
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	unlock := r.store.locks.Lock(accountKey(accountID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if len(r.store.accountLines[accountID]) > 0 {
		return fmt.Errorf("%w: account %s has %d lines", apperrors.ErrAccountInUse, acc.Code, len(r.store.accountLines[accountID]))
	}
	delete(r.store.accounts, accountID)
	delete(r.store.accountByCode, acc.Code)
	return nil
}

func accountKey(id string) string { return "account:" + id }
