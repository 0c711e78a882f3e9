// Package memory is an in-process implementation of every repository port. It is
// used when no database is configured and by tests.
package memory

import (
	"sync"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/utils/keylock"
)

// Store holds all data. mu guards the maps; locks serializes multi-step updates per
// account or student, the way row locks do in PostgreSQL.
type Store struct {
	mu    sync.RWMutex
	locks *keylock.KeyLock

	accounts      map[string]domain.Account
	accountByCode map[string]string

	journals     map[string]domain.Journal
	journalLines map[string][]domain.JournalLine // by journal ID, in line order
	accountLines map[string][]domain.JournalLine // by account ID, in posting order

	packages     map[string]domain.CreditPackage
	credits      map[string]domain.StudentCredit
	creditTxns   map[string][]domain.CreditTransaction
	bankLines    map[string]domain.BankStatementLine
	bankLineKeys []string // insertion order
	runs         map[string]domain.ReconciliationRun
	runRecords   map[string][]domain.ReconciliationRecord
	invoices     map[string]domain.Invoice
	invoiceKeys  []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		locks:         keylock.New(),
		accounts:      make(map[string]domain.Account),
		accountByCode: make(map[string]string),
		journals:      make(map[string]domain.Journal),
		journalLines:  make(map[string][]domain.JournalLine),
		accountLines:  make(map[string][]domain.JournalLine),
		packages:      make(map[string]domain.CreditPackage),
		credits:       make(map[string]domain.StudentCredit),
		creditTxns:    make(map[string][]domain.CreditTransaction),
		bankLines:     make(map[string]domain.BankStatementLine),
		runs:          make(map[string]domain.ReconciliationRun),
		runRecords:    make(map[string][]domain.ReconciliationRecord),
		invoices:      make(map[string]domain.Invoice),
	}
}

// NewRepositoryProvider wires one store into every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        &AccountRepository{store: s},
		JournalRepo:        &JournalRepository{store: s},
		ReportingRepo:      &ReportingRepository{store: s},
		CreditRepo:         &CreditRepository{store: s},
		ReconciliationRepo: &ReconciliationRepository{store: s},
		InvoiceRepo:        &InvoiceRepository{store: s},
	}
}

// inRange reports whether t lies in [from, to]; nil bounds are open.
func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
