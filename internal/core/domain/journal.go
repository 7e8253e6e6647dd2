package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Archived EntryStatus = "ARCHIVED"
)

// JournalEntry represents a single financial event composed of multiple lines.
// Drafts may be transiently unbalanced while being edited; a posted entry
// always balances to within the accounting tolerance.
type JournalEntry struct {
	EntryID         string        `json:"entryID"`     // Primary Key (ULID)
	EntryNumber     string        `json:"entryNumber"` // Unique, sequential, human-readable (JE-000042)
	TransactionDate time.Time     `json:"transactionDate"`
	Reference       string        `json:"reference"`   // Correlates to the source document number, display only
	Description     string        `json:"description"` // User description
	Status          EntryStatus   `json:"status"`
	Lines           []JournalLine `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// JournalLine is a single debit or credit against one leaf account. Exactly one
// of Debit/Credit is non-zero on a posted line.
type JournalLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (ULID)
	EntryID     string          `json:"entryID"`   // FK -> journal_entries.entry_id (Not Null)
	AccountID   string          `json:"accountID"` // FK -> accounts.account_id (Not Null)
	Debit       decimal.Decimal `json:"debit"`     // Non-negative
	Credit      decimal.Decimal `json:"credit"`    // Non-negative
	Description string          `json:"description"`
	AuditFields
}
