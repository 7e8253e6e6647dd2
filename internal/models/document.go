package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the posting rules applied to a business document.
type DocumentType string

const (
	SalesInvoice    DocumentType = "SALES_INVOICE"
	PurchaseInvoice DocumentType = "PURCHASE_INVOICE"
	Receipt         DocumentType = "RECEIPT"
	Payment         DocumentType = "PAYMENT"
	Transfer        DocumentType = "TRANSFER"
)

// DocumentStatus indicates the lifecycle state of a document.
type DocumentStatus string

const (
	DocumentDraft  DocumentStatus = "DRAFT"
	DocumentPosted DocumentStatus = "POSTED"
)

// Document is the storage representation of a business document header.
// BankAccountID/FromAccountID/ToAccountID and EntryID are nullable; the
// repository maps them through sql.NullString.
type Document struct {
	DocumentID     string          `db:"document_id"`
	DocumentNumber string          `db:"document_number"`
	DocumentType   DocumentType    `db:"document_type"`
	DocumentDate   time.Time       `db:"document_date"`
	Counterparty   string          `db:"counterparty"`
	Description    string          `db:"description"`
	Status         DocumentStatus  `db:"status"`
	Total          decimal.Decimal `db:"total"`
	TaxTotal       decimal.Decimal `db:"tax_total"`
	BankAccountID  string          `db:"bank_account_id"` // Nullable
	FromAccountID  string          `db:"from_account_id"` // Nullable
	ToAccountID    string          `db:"to_account_id"`   // Nullable
	EntryID        *string         `db:"entry_id"`        // Nullable owned FK to the derived journal entry
	AuditFields
}

// DocumentLine is the storage representation of one document line.
type DocumentLine struct {
	LineID      string          `db:"line_id"`
	DocumentID  string          `db:"document_id"`
	AccountID   string          `db:"account_id"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	Discount    decimal.Decimal `db:"discount"`
}
