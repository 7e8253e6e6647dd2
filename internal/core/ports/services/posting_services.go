package services

import (
	"context"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	"github.com/openbooks/openbooks_backend/internal/dto"
)

// DocumentReaderSvc defines read operations for document data
type DocumentReaderSvc interface {
	// GetDocumentByID retrieves a specific document, with its lines, by ID.
	GetDocumentByID(ctx context.Context, documentID string, userID string) (*domain.Document, error)

	// ListDocuments retrieves a paginated list of documents.
	ListDocuments(ctx context.Context, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentWriterSvc defines write operations for document data
type DocumentWriterSvc interface {
	// CreateDocument persists a new draft document with its lines.
	CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, userID string) (*domain.Document, error)

	// UpdateDocument updates a draft document, optionally replacing its lines.
	UpdateDocument(ctx context.Context, documentID string, req dto.UpdateDocumentRequest, userID string) (*domain.Document, error)

	// DeleteDocument removes a draft document. Posted documents must be
	// unposted first.
	DeleteDocument(ctx context.Context, documentID string, userID string) error
}

// DocumentPostingSvc defines the document posting lifecycle operations
type DocumentPostingSvc interface {
	// ApproveDocument derives the balanced journal entry for a draft document
	// and posts it atomically.
	ApproveDocument(ctx context.Context, documentID string, userID string) (*domain.Document, error)

	// UnpostDocument reverts a posted document and its derived entry to draft,
	// backing the exact posted amounts out of the account balances.
	UnpostDocument(ctx context.Context, documentID string, userID string) (*domain.Document, error)
}

// DocumentSvcFacade combines all document-related service interfaces
// This is a facade for clients that need access to all operations
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
	DocumentPostingSvc
}
