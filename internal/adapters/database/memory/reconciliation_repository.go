package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
)

// ReconciliationRepository implements portsrepo.ReconciliationRepository.
type ReconciliationRepository struct {
	store *Store
}

var _ portsrepo.ReconciliationRepository = (*ReconciliationRepository)(nil)

func (r *ReconciliationRepository) SaveBankLines(ctx context.Context, lines []domain.BankStatementLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := r.store.bankLines[l.LineID]; ok {
			return fmt.Errorf("%w: bank line %s", apperrors.ErrDuplicate, l.LineID)
		}
		if _, ok := seen[l.LineID]; ok {
			return fmt.Errorf("%w: bank line %s appears twice", apperrors.ErrDuplicate, l.LineID)
		}
		seen[l.LineID] = struct{}{}
	}
	for _, l := range lines {
		r.store.bankLines[l.LineID] = l
		r.store.bankLineKeys = append(r.store.bankLineKeys, l.LineID)
	}
	return nil
}

func (r *ReconciliationRepository) ListBankLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.BankStatementLine, error) {
	r.store.mu.RLock()
	out := make([]domain.BankStatementLine, 0)
	for _, id := range r.store.bankLineKeys {
		l := r.store.bankLines[id]
		if l.AccountID == accountID && inRange(l.Date, &from, &to) {
			out = append(out, l)
		}
	}
	r.store.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *ReconciliationRepository) SaveRun(ctx context.Context, run domain.ReconciliationRun, records []domain.ReconciliationRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.runs[run.RunID]; ok {
		return fmt.Errorf("%w: reconciliation run %s", apperrors.ErrDuplicate, run.RunID)
	}
	r.store.runs[run.RunID] = run
	r.store.runRecords[run.RunID] = append([]domain.ReconciliationRecord(nil), records...)
	return nil
}

func (r *ReconciliationRepository) FindRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation run %s", apperrors.ErrNotFound, runID)
	}
	return &run, nil
}

func (r *ReconciliationRepository) ListRecordsByRun(ctx context.Context, runID string) ([]domain.ReconciliationRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.ReconciliationRecord{}, r.store.runRecords[runID]...), nil
}
