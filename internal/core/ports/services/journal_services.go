package services

import (
	"context"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal with its lines.
	GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a page of journals, newest first.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostEntry validates a balanced entry and applies it to account balances atomically.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.Journal, error)

	// ReverseJournal posts a mirrored entry and marks the original reversed.
	ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error)
}

// LineReaderSvc defines read operations for journal lines
type LineReaderSvc interface {
	// ListLinesByAccount returns an account's lines in posting order with running balances.
	ListLinesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalLine, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	LineReaderSvc
}
