package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// CreateDocumentLineRequest defines one revenue/expense split of a new document.
type CreateDocumentLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Discount    decimal.Decimal `json:"discount"`
}

// CreateDocumentRequest defines the data needed to create a new document.
// Which fields are mandatory depends on the document type; the service
// validates the type-specific shape.
type CreateDocumentRequest struct {
	DocumentType  domain.DocumentType         `json:"documentType" binding:"required,oneof=SALES_INVOICE PURCHASE_INVOICE RECEIPT PAYMENT TRANSFER"`
	DocumentDate  time.Time                   `json:"documentDate" binding:"required,notzerodate"`
	Counterparty  string                      `json:"counterparty"`
	Description   string                      `json:"description"`
	Total         decimal.Decimal             `json:"total"`    // Treasury and transfer amount; derived for invoices
	TaxTotal      decimal.Decimal             `json:"taxTotal"` // Invoices only
	BankAccountID *string                     `json:"bankAccountID"`
	FromAccountID *string                     `json:"fromAccountID"`
	ToAccountID   *string                     `json:"toAccountID"`
	Lines         []CreateDocumentLineRequest `json:"lines" binding:"omitempty,dive"`
}

// UpdateDocumentRequest defines the data allowed for updating a draft document.
// Use pointers to distinguish between zero-value updates and fields not provided.
// When Lines is non-nil the full line set is replaced.
type UpdateDocumentRequest struct {
	DocumentDate  *time.Time                  `json:"documentDate"`
	Counterparty  *string                     `json:"counterparty"`
	Description   *string                     `json:"description"`
	Total         *decimal.Decimal            `json:"total"`
	TaxTotal      *decimal.Decimal            `json:"taxTotal"`
	BankAccountID *string                     `json:"bankAccountID"`
	FromAccountID *string                     `json:"fromAccountID"`
	ToAccountID   *string                     `json:"toAccountID"`
	Lines         []CreateDocumentLineRequest `json:"lines" binding:"omitempty,dive"`
}

// DocumentLineResponse defines the data returned for a document line.
type DocumentLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Discount    decimal.Decimal `json:"discount"`
}

// DocumentResponse defines the data returned for a document.
type DocumentResponse struct {
	DocumentID     string                 `json:"documentID"`
	DocumentNumber string                 `json:"documentNumber"`
	DocumentType   domain.DocumentType    `json:"documentType"`
	DocumentDate   time.Time              `json:"documentDate"`
	Counterparty   string                 `json:"counterparty"`
	Description    string                 `json:"description"`
	Status         domain.DocumentStatus  `json:"status"`
	Total          decimal.Decimal        `json:"total"`
	TaxTotal       decimal.Decimal        `json:"taxTotal"`
	BankAccountID  string                 `json:"bankAccountID,omitempty"`
	FromAccountID  string                 `json:"fromAccountID,omitempty"`
	ToAccountID    string                 `json:"toAccountID,omitempty"`
	EntryID        *string                `json:"entryID,omitempty"`
	Lines          []DocumentLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	CreatedBy      string                 `json:"createdBy"`
	LastUpdatedAt  time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy  string                 `json:"lastUpdatedBy"`
}

// ToDocumentLineResponse converts a domain.DocumentLine to DocumentLineResponse DTO.
func ToDocumentLineResponse(line *domain.DocumentLine) DocumentLineResponse {
	return DocumentLineResponse{
		LineID:      line.LineID,
		AccountID:   line.AccountID,
		Description: line.Description,
		Amount:      line.Amount,
		Discount:    line.Discount,
	}
}

// ToDocumentLineResponses converts a slice of domain.DocumentLine to []DocumentLineResponse.
func ToDocumentLineResponses(lines []domain.DocumentLine) []DocumentLineResponse {
	responses := make([]DocumentLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToDocumentLineResponse(&line)
	}
	return responses
}

// ToDocumentResponse converts a domain.Document to DocumentResponse DTO.
func ToDocumentResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:     doc.DocumentID,
		DocumentNumber: doc.DocumentNumber,
		DocumentType:   doc.DocumentType,
		DocumentDate:   doc.DocumentDate,
		Counterparty:   doc.Counterparty,
		Description:    doc.Description,
		Status:         doc.Status,
		Total:          doc.Total,
		TaxTotal:       doc.TaxTotal,
		BankAccountID:  doc.BankAccountID,
		FromAccountID:  doc.FromAccountID,
		ToAccountID:    doc.ToAccountID,
		EntryID:        doc.EntryID,
		Lines:          ToDocumentLineResponses(doc.Lines),
		CreatedAt:      doc.CreatedAt,
		CreatedBy:      doc.CreatedBy,
		LastUpdatedAt:  doc.LastUpdatedAt,
		LastUpdatedBy:  doc.LastUpdatedBy,
	}
}

// ToDocumentResponses converts a slice of domain.Document to []DocumentResponse.
func ToDocumentResponses(docs []domain.Document) []DocumentResponse {
	responses := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = ToDocumentResponse(&doc)
	}
	return responses
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	DocumentType *string `form:"documentType" binding:"omitempty,oneof=SALES_INVOICE PURCHASE_INVOICE RECEIPT PAYMENT TRANSFER"`
	Limit        int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken    *string `form:"nextToken"`
}

// ListDocumentsResponse wraps a page of documents with the next page token.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
