package repositories

import (
	"context"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a journal header by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves journals dated within [from, to] (either bound optional), newest first,
	// using token-based pagination. It returns the journals and a token for the next page.
	ListJournals(ctx context.Context, from, to *time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal and its lines and applies balanceChanges to the referenced
	// accounts, all in one atomic unit. Every account in balanceChanges is locked for the
	// duration. Returns apperrors.ErrUnknownAccount if an account does not exist.
	//
	// When journal.OriginalJournalID is set the original is marked REVERSED in the same unit;
	// apperrors.ErrConflict is returned if it is not POSTED.
	SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error
}

// LineReader defines read operations for journal lines
type LineReader interface {
	// FindLinesByJournalID retrieves the lines of one journal in line order.
	FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error)

	// ListLinesByAccount retrieves an account's lines dated within [from, to] (either bound optional),
	// oldest first, with the journal date and description populated.
	ListLinesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalLine, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
}
