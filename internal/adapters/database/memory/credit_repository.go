package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
)

// CreditRepository implements portsrepo.CreditRepositoryFacade.
type CreditRepository struct {
	store *Store
}

var _ portsrepo.CreditRepositoryFacade = (*CreditRepository)(nil)

func studentKey(id string) string { return "student:" + id }

func (r *CreditRepository) SavePackage(ctx context.Context, pkg domain.CreditPackage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.packages[pkg.PackageID]; ok {
		return fmt.Errorf("%w: package %s", apperrors.ErrDuplicate, pkg.PackageID)
	}
	r.store.packages[pkg.PackageID] = pkg
	return nil
}

func (r *CreditRepository) FindPackageByID(ctx context.Context, packageID string) (*domain.CreditPackage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	pkg, ok := r.store.packages[packageID]
	if !ok {
		return nil, fmt.Errorf("%w: package %s", apperrors.ErrNotFound, packageID)
	}
	return &pkg, nil
}

func (r *CreditRepository) ListPackages(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.CreditPackage, 0, len(r.store.packages))
	for _, pkg := range r.store.packages {
		if activeOnly && !pkg.IsActive {
			continue
		}
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PackageID < out[j].PackageID
	})
	return out, nil
}

func (r *CreditRepository) UpdatePackage(ctx context.Context, pkg domain.CreditPackage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.packages[pkg.PackageID]; !ok {
		return fmt.Errorf("%w: package %s", apperrors.ErrNotFound, pkg.PackageID)
	}
	r.store.packages[pkg.PackageID] = pkg
	return nil
}

func (r *CreditRepository) CreateStudentCredit(ctx context.Context, credit domain.StudentCredit) error {
	unlock := r.store.locks.Lock(studentKey(credit.StudentID))
	defer unlock()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.credits[credit.StudentID]; ok {
		return fmt.Errorf("%w: credit account for student %s", apperrors.ErrDuplicate, credit.StudentID)
	}
	credit.Transactions = nil
	r.store.credits[credit.StudentID] = credit
	return nil
}

func (r *CreditRepository) FindStudentCredit(ctx context.Context, studentID string) (*domain.StudentCredit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	credit, ok := r.store.credits[studentID]
	if !ok {
		return nil, fmt.Errorf("%w: credit account for student %s", apperrors.ErrNotFound, studentID)
	}
	return &credit, nil
}

func (r *CreditRepository) ListCreditTransactions(ctx context.Context, studentID string) ([]domain.CreditTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.CreditTransaction{}, r.store.creditTxns[studentID]...), nil
}

func (r *CreditRepository) ApplyCreditTransaction(ctx context.Context, txn domain.CreditTransaction) (*domain.StudentCredit, error) {
	unlock := r.store.locks.Lock(studentKey(txn.StudentID))
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	credit, ok := r.store.credits[txn.StudentID]
	if !ok {
		credit = domain.StudentCredit{StudentID: txn.StudentID}
	}
	after := credit.RemainingHours.Add(txn.Hours)
	if after.IsNegative() {
		return nil, fmt.Errorf("%w: student %s has %s hours, needs %s",
			apperrors.ErrInsufficientCredit, txn.StudentID, credit.RemainingHours, txn.Hours.Neg())
	}

	txn.BalanceAfter = after
	credit.RemainingHours = after
	credit.UpdatedAt = txn.Date
	if txn.PackageID != "" {
		credit.LastPackageID = txn.PackageID
	}
	r.store.credits[txn.StudentID] = credit
	r.store.creditTxns[txn.StudentID] = append(r.store.creditTxns[txn.StudentID], txn)
	return &credit, nil
}
