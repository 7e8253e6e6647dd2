package domain

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

// Document is a business document (invoice, treasury transaction or transfer)
// that, once approved, owns a derived journal entry. The document is the
// authoritative record; the entry is generated from it, never hand-authored.
type Document struct {
	DocumentID     string          `json:"documentID"`     // Primary Key (ULID)
	DocumentNumber string          `json:"documentNumber"` // Unique per type (INV-000042, RCT-000007, ...)
	DocumentType   DocumentType    `json:"documentType"`
	DocumentDate   time.Time       `json:"documentDate"`
	Counterparty   string          `json:"counterparty"` // Customer/supplier display name
	Description    string          `json:"description"`
	Status         DocumentStatus  `json:"status"`
	Total          decimal.Decimal `json:"total"`    // Invoices: grand total incl. tax; treasury/transfer: amount
	TaxTotal       decimal.Decimal `json:"taxTotal"` // Invoices only; zero means no tax line is emitted
	BankAccountID  string          `json:"bankAccountID,omitempty"` // Receipts/payments: the bank or cash account
	FromAccountID  string          `json:"fromAccountID,omitempty"` // Transfers
	ToAccountID    string          `json:"toAccountID,omitempty"`   // Transfers
	EntryID        *string         `json:"entryID,omitempty"`       // Owned FK -> journal_entries.entry_id
	Lines          []DocumentLine  `json:"lines,omitempty"`
	AuditFields
}

// DocumentLine is one revenue/expense split of an invoice or one offsetting
// allocation of a treasury transaction. Transfers carry no lines.
type DocumentLine struct {
	LineID      string          `json:"lineID"`     // Primary Key (ULID)
	DocumentID  string          `json:"documentID"` // FK -> documents.document_id (Not Null)
	AccountID   string          `json:"accountID"`  // FK -> accounts.account_id (Not Null)
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`   // Positive
	Discount    decimal.Decimal `json:"discount"` // Invoices: per-line discount, netted before posting
}

// NetAmount returns the postable amount of an invoice line (amount less discount).
func (l DocumentLine) NetAmount() decimal.Decimal {
	return l.Amount.Sub(l.Discount)
}
