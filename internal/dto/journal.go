package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// CreateJournalLineRequest defines one debit or credit line of a new entry.
// Exactly one of debit/credit must be positive; the service enforces this.
type CreateJournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateJournalEntryRequest defines the data needed to create a new entry.
// PostImmediately skips the draft stage: the entry is created and posted in one
// call, subject to the same balance checks as a separate post.
type CreateJournalEntryRequest struct {
	TransactionDate time.Time                  `json:"transactionDate" binding:"required,notzerodate"`
	Reference       string                     `json:"reference"`
	Description     string                     `json:"description"`
	PostImmediately bool                       `json:"postImmediately"`
	Lines           []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateJournalEntryRequest defines the data allowed for updating a draft entry.
// Use pointers to distinguish between zero-value updates and fields not provided.
// When Lines is non-nil the full line set is replaced.
type UpdateJournalEntryRequest struct {
	TransactionDate *time.Time                 `json:"transactionDate"`
	Reference       *string                    `json:"reference"`
	Description     *string                    `json:"description"`
	Lines           []CreateJournalLineRequest `json:"lines" binding:"omitempty,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryNumber     string                `json:"entryNumber"`
	TransactionDate time.Time             `json:"transactionDate"`
	Reference       string                `json:"reference"`
	Description     string                `json:"description"`
	Status          domain.EntryStatus    `json:"status"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToJournalLineResponse converts a domain.JournalLine to JournalLineResponse DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      line.LineID,
		AccountID:   line.AccountID,
		Debit:       line.Debit,
		Credit:      line.Credit,
		Description: line.Description,
	}
}

// ToJournalLineResponses converts a slice of domain.JournalLine to []JournalLineResponse.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToJournalLineResponse(&line)
	}
	return responses
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:         entry.EntryID,
		EntryNumber:     entry.EntryNumber,
		TransactionDate: entry.TransactionDate,
		Reference:       entry.Reference,
		Description:     entry.Description,
		Status:          entry.Status,
		Lines:           ToJournalLineResponses(entry.Lines),
		CreatedAt:       entry.CreatedAt,
		CreatedBy:       entry.CreatedBy,
		LastUpdatedAt:   entry.LastUpdatedAt,
		LastUpdatedBy:   entry.LastUpdatedBy,
	}
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry to []JournalEntryResponse.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToJournalEntryResponse(&entry)
	}
	return responses
}

// ListJournalEntriesParams defines query parameters for listing entries.
type ListJournalEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListJournalEntriesResponse wraps a page of entries with the next page token.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
