package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// DocumentReader defines read operations for document data
type DocumentReader interface {
	// FindDocumentByID retrieves a document header by its unique identifier.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)

	// FindDocumentByEntryID retrieves the document owning the given journal
	// entry via its entry FK, or apperrors.ErrNotFound when the entry is
	// freestanding.
	FindDocumentByEntryID(ctx context.Context, entryID string) (*domain.Document, error)

	// FindLinesByDocumentID retrieves all lines of a single document.
	FindLinesByDocumentID(ctx context.Context, documentID string) ([]domain.DocumentLine, error)

	// ListDocuments retrieves a paginated list of documents, optionally filtered
	// by type, using token-based pagination.
	ListDocuments(ctx context.Context, docType *domain.DocumentType, limit int, nextToken *string) ([]domain.Document, *string, error)
}

// DocumentWriter defines write operations for document data
type DocumentWriter interface {
	// SaveDocument persists a new draft document with its lines.
	SaveDocument(ctx context.Context, document domain.Document, lines []domain.DocumentLine) error

	// UpdateDocument updates the header fields of a draft document.
	UpdateDocument(ctx context.Context, document domain.Document) error

	// ReplaceDocumentLines deletes and re-inserts the lines of a draft document.
	ReplaceDocumentLines(ctx context.Context, documentID string, lines []domain.DocumentLine) error

	// DeleteDocument removes a draft document and its lines.
	DeleteDocument(ctx context.Context, documentID string) error

	// NextDocumentNumber reserves the next sequential number for a document type
	// (INV-000042, RCT-000007, ...).
	NextDocumentNumber(ctx context.Context, docType domain.DocumentType) (string, error)
}

// DocumentPostingSupport defines the atomic posting operations that tie a
// document, its derived journal entry and the account balances together.
type DocumentPostingSupport interface {
	// SavePosting persists the derived entry and its lines, marks the document
	// POSTED with the entry FK set, and applies the balance deltas, all in one
	// transaction. When staleEntryID is non-nil the previous draft entry is
	// deleted first.
	SavePosting(ctx context.Context, documentID string, staleEntryID *string, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, userID string) error

	// SaveUnposting reverts the document and its entry to DRAFT and applies the
	// negated balance deltas, all in one transaction. The entry and the FK are
	// kept so the posting can be inspected and re-approved.
	SaveUnposting(ctx context.Context, documentID string, entryID string, balanceChanges map[string]decimal.Decimal, userID string) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces
// This is a facade for clients that need access to all operations
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	DocumentPostingSupport
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
