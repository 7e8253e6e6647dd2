package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// JournalReader defines read operations for journal entry data
type JournalReader interface {
	// FindEntryByID retrieves a journal entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of entries using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entry data
type JournalWriter interface {
	// SaveEntry persists a new draft entry with its lines. Balances are not touched.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// SavePostedEntry persists a new entry that is POSTED from the start,
	// applying the account balance deltas in the same transaction. Used by
	// create-and-post.
	SavePostedEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, userID string) error

	// UpdateEntry updates the header fields of a draft entry.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceEntryLines deletes and re-inserts the lines of a draft entry.
	ReplaceEntryLines(ctx context.Context, entryID string, lines []domain.JournalLine) error

	// UpdateEntryStatusWithBalances flips the entry status and applies the
	// account balance deltas in a single transaction. Used by post and unpost.
	UpdateEntryStatusWithBalances(ctx context.Context, entryID string, status domain.EntryStatus, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// DeleteEntry removes a draft entry and its lines.
	DeleteEntry(ctx context.Context, entryID string) error

	// NextEntryNumber reserves the next sequential entry number (JE-000042).
	NextEntryNumber(ctx context.Context) (string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
