package services

import (
	"context"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	"github.com/openbooks/openbooks_backend/internal/dto"
)

// JournalReaderSvc defines read operations for journal entry data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a specific entry, with its lines, by ID.
	GetEntryByID(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, userID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalWriterSvc defines write operations for journal entry data
type JournalWriterSvc interface {
	// CreateEntry persists a new entry with its lines, as a draft or posted
	// immediately when the request asks for it.
	CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateEntry updates a draft entry, optionally replacing its lines.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a draft entry. Posted entries must be unposted first.
	DeleteEntry(ctx context.Context, entryID string, userID string) error
}

// JournalLifecycleSvc defines the posting lifecycle operations
type JournalLifecycleSvc interface {
	// PostEntry validates a draft entry and applies it to the account balances.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// UnpostEntry reverts a posted entry to draft, backing its exact amounts
	// out of the account balances.
	UnpostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ArchiveEntry hides a draft entry from listings without deleting it.
	ArchiveEntry(ctx context.Context, entryID string, userID string) error
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalLifecycleSvc
}
