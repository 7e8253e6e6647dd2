package models

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

// JournalEntry is the storage representation of a journal entry header.
type JournalEntry struct {
	EntryID         string      `db:"entry_id"`
	EntryNumber     string      `db:"entry_number"`
	TransactionDate time.Time   `db:"transaction_date"`
	Reference       string      `db:"reference"`
	Description     string      `db:"description"`
	Status          EntryStatus `db:"status"`
	AuditFields
}

// JournalLine is the storage representation of a single debit or credit.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	AccountID   string          `db:"account_id"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
	AuditFields
}
