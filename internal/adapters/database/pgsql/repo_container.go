package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
)

// NewRepositoryProvider creates every PostgreSQL repository on one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(pool),
		JournalRepo:        newPgxJournalRepository(pool),
		ReportingRepo:      newPgxReportingRepository(pool),
		CreditRepo:         newPgxCreditRepository(pool),
		ReconciliationRepo: newPgxReconciliationRepository(pool),
		InvoiceRepo:        newPgxInvoiceRepository(pool),
	}
}
