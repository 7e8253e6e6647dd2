package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/dto"
	"github.com/openbooks/openbooks_backend/internal/ids"
	"github.com/openbooks/openbooks_backend/internal/utils/accounting"
)

var (
	ErrUnbalancedEntry      = errors.New("entry not balanced")
	ErrEmptyEntry           = errors.New("entry needs at least two lines")
	ErrLineNotExclusive     = errors.New("line must carry exactly one of debit or credit")
	ErrAlreadyPosted        = errors.New("entry is already posted")
	ErrEntryNotDraft        = errors.New("entry is not in draft")
	ErrNotPosted            = errors.New("entry is not posted")
	ErrCannotDeletePosted   = errors.New("posted entries cannot be deleted, unpost first")
	ErrEntryOwnedByDocument = errors.New("entry is managed through its source document")
	ErrNotLeaf              = errors.New("postings must target leaf accounts")
	ErrAccountLocked        = errors.New("account is locked pending reconciliation")
	ErrAccountNotFound      = errors.New("account not found")
)

// journalService implements manual journal entry management and the posting
// lifecycle.
type journalService struct {
	BaseService
	journalRepo  portsrepo.JournalRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryFacade
	documentRepo portsrepo.DocumentReader
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, documentRepo portsrepo.DocumentReader) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		documentRepo: documentRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// loadPostableAccounts fetches the accounts referenced by a line set and
// verifies every one exists, is a leaf and is not locked.
func (s *journalService) loadPostableAccounts(ctx context.Context, lines []domain.JournalLine) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if acc.IsGroup {
			return nil, fmt.Errorf("%w: account %s is a group account", ErrNotLeaf, acc.Code)
		}
		if acc.IsLocked {
			return nil, fmt.Errorf("%w: account %s", ErrAccountLocked, acc.Code)
		}
	}
	return accounts, nil
}

// ensureNotDocumentOwned refuses journal-level mutation of an entry that a
// document owns through its entry FK. Such entries move only through the
// document lifecycle; flipping them here would desynchronize the document
// status and double-apply balances on the next document unpost.
func (s *journalService) ensureNotDocumentOwned(ctx context.Context, entryID string) error {
	doc, err := s.documentRepo.FindDocumentByEntryID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check document ownership of entry %s: %w", entryID, err)
	}
	return fmt.Errorf("%w: entry belongs to document %s", ErrEntryOwnedByDocument, doc.DocumentNumber)
}

// accountTypesOf projects an account map down to the type lookup the balance
// calculations need.
func accountTypesOf(accounts map[string]domain.Account) map[string]domain.AccountType {
	types := make(map[string]domain.AccountType, len(accounts))
	for id, acc := range accounts {
		types[id] = acc.AccountType
	}
	return types
}

// buildLines converts line requests into domain lines, enforcing the
// exactly-one-of-debit-or-credit shape.
func (s *journalService) buildLines(entryID string, reqs []dto.CreateJournalLineRequest, userID string, now time.Time) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqs))
	for i, lineReq := range reqs {
		line := domain.JournalLine{
			LineID:      ids.New(),
			EntryID:     entryID,
			AccountID:   lineReq.AccountID,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineReq.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := accounting.ValidateLineShape(line, false); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLineNotExclusive, err.Error())
		}
		lines[i] = line
	}
	return lines, nil
}

// CreateEntry persists a new draft entry with its lines. Drafts may be
// unbalanced; balance is enforced at posting time.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	now := time.Now().UTC()
	entryID := ids.New()

	lines, err := s.buildLines(entryID, req.Lines, userID, now)
	if err != nil {
		return nil, err
	}
	accounts, err := s.loadPostableAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}
	if req.PostImmediately {
		// Balance is checked before anything is written, so a rejected
		// create-and-post leaves no draft behind.
		debit, credit := accounting.EntryTotals(lines)
		if !accounting.WithinTolerance(debit, credit) {
			return nil, fmt.Errorf("%w: debit %s vs credit %s", ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
		}
	}

	entryNumber, err := s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to reserve entry number")
		return nil, fmt.Errorf("failed to reserve entry number: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     entryNumber,
		TransactionDate: req.TransactionDate,
		Reference:       req.Reference,
		Description:     req.Description,
		Status:          domain.Draft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if req.PostImmediately {
		// The entry is inserted already POSTED with its balance deltas in one
		// repository transaction, so a failure leaves no orphaned draft behind.
		entry.Status = domain.Posted
		balanceChanges, err := accounting.BalanceChanges(lines, accountTypesOf(accounts))
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance changes: %w", err)
		}
		if err := s.journalRepo.SavePostedEntry(ctx, entry, lines, balanceChanges, userID); err != nil {
			s.LogError(ctx, err, "Failed to save posted entry", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to save posted entry: %w", err)
		}
		s.LogInfo(ctx, "Journal entry created and posted", slog.String("entry_id", entryID), slog.String("entry_number", entryNumber))
	} else {
		if err := s.journalRepo.SaveEntry(ctx, entry, lines); err != nil {
			s.LogError(ctx, err, "Failed to save entry", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to save entry: %w", err)
		}
		s.LogInfo(ctx, "Journal entry created", slog.String("entry_id", entryID), slog.String("entry_number", entryNumber))
	}

	entry.Lines = lines
	return &entry, nil
}

// GetEntryByID retrieves an entry and its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries with their lines.
func (s *journalService) ListEntries(ctx context.Context, userID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries")
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entryIDs := make([]string, len(entries))
	for i, entry := range entries {
		entryIDs[i] = entry.EntryID
	}
	linesMap, err := s.journalRepo.FindLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for entry page")
		return nil, fmt.Errorf("failed to fetch lines for entries: %w", err)
	}
	for i := range entries {
		entries[i].Lines = linesMap[entries[i].EntryID]
	}

	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// UpdateEntry updates a draft entry's header and, when requested, replaces its
// lines. Posted entries must be unposted before editing.
func (s *journalService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s", ErrAlreadyPosted, entry.EntryNumber)
	}
	if err := s.ensureNotDocumentOwned(ctx, entryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.TransactionDate != nil {
		entry.TransactionDate = *req.TransactionDate
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update entry %s: %w", entryID, err)
	}

	if req.Lines != nil {
		lines, err := s.buildLines(entryID, req.Lines, userID, now)
		if err != nil {
			return nil, err
		}
		if _, err := s.loadPostableAccounts(ctx, lines); err != nil {
			return nil, err
		}
		if err := s.journalRepo.ReplaceEntryLines(ctx, entryID, lines); err != nil {
			s.LogError(ctx, err, "Failed to replace lines for entry", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to replace lines for entry %s: %w", entryID, err)
		}
		entry.Lines = lines
	} else {
		lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
		}
		entry.Lines = lines
	}

	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// DeleteEntry removes a draft entry and its lines.
func (s *journalService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status == domain.Posted {
		return fmt.Errorf("%w: entry %s", ErrCannotDeletePosted, entry.EntryNumber)
	}
	if err := s.ensureNotDocumentOwned(ctx, entryID); err != nil {
		return err
	}

	if err := s.journalRepo.DeleteEntry(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to delete entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	return nil
}

// PostEntry validates a draft entry and applies it to the account balances in
// one transaction.
func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status == domain.Posted {
		return nil, fmt.Errorf("%w: entry %s", ErrAlreadyPosted, entry.EntryNumber)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s has status %s", ErrEntryNotDraft, entry.EntryNumber, entry.Status)
	}
	if err := s.ensureNotDocumentOwned(ctx, entryID); err != nil {
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: entry %s", ErrEmptyEntry, entry.EntryNumber)
	}
	for _, line := range lines {
		if err := accounting.ValidateLineShape(line, false); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLineNotExclusive, err.Error())
		}
	}

	debit, credit := accounting.EntryTotals(lines)
	if !accounting.WithinTolerance(debit, credit) {
		return nil, fmt.Errorf("%w: debit %s vs credit %s", ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
	}

	accounts, err := s.loadPostableAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypesOf(accounts))
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatusWithBalances(ctx, entryID, domain.Posted, balanceChanges, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to post entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry posted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	entry.Status = domain.Posted
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	entry.Lines = lines
	return entry, nil
}

// UnpostEntry reverts a posted entry to draft. The reversal reuses the exact
// decimals stored on the lines, negated, so posting then unposting restores
// every balance bit for bit.
func (s *journalService) UnpostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s has status %s", ErrNotPosted, entry.EntryNumber, entry.Status)
	}
	if err := s.ensureNotDocumentOwned(ctx, entryID); err != nil {
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			accountIDs = append(accountIDs, line.AccountID)
		}
	}
	// Locked accounts do not block unposting; backing a posting out is how a
	// drifted account gets repaired.
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, found := accounts[id]; !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
	}

	balanceChanges, err := accounting.BalanceChanges(lines, accountTypesOf(accounts))
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}
	reversal := accounting.Negate(balanceChanges)

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatusWithBalances(ctx, entryID, domain.Draft, reversal, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to unpost entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to unpost entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry unposted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	entry.Status = domain.Draft
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	entry.Lines = lines
	return entry, nil
}

// ArchiveEntry hides a draft entry from listings without deleting it.
func (s *journalService) ArchiveEntry(ctx context.Context, entryID string, userID string) error {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status == domain.Posted {
		return fmt.Errorf("%w: entry %s", ErrAlreadyPosted, entry.EntryNumber)
	}
	if err := s.ensureNotDocumentOwned(ctx, entryID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatusWithBalances(ctx, entryID, domain.Archived, map[string]decimal.Decimal{}, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to archive entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to archive entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry archived", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	return nil
}
