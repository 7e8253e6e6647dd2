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
	ErrUnresolvedAccount   = errors.New("no account configured for posting role")
	ErrAmountMismatch      = errors.New("document total does not match its lines")
	ErrSameAccountTransfer = errors.New("transfer accounts must differ")
	ErrDocumentNotDraft    = errors.New("document is not in draft")
	ErrDocumentNotPosted   = errors.New("document is not posted")
	ErrDocumentShape       = errors.New("document shape invalid for its type")
)

// documentService implements business document management and the derivation
// of journal entries from approved documents.
type documentService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryWithTx
	journalRepo  portsrepo.JournalRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(documentRepo portsrepo.DocumentRepositoryWithTx, journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.DocumentSvcFacade {
	return &documentService{
		documentRepo: documentRepo,
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
	}
}

// Ensure documentService implements the portssvc.DocumentSvcFacade interface
var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

func isInvoice(t domain.DocumentType) bool {
	return t == domain.SalesInvoice || t == domain.PurchaseInvoice
}

func isTreasury(t domain.DocumentType) bool {
	return t == domain.Receipt || t == domain.Payment
}

// validateDocumentShape enforces the type-specific structure of a document and
// returns the authoritative total derived from it.
func (s *documentService) validateDocumentShape(doc *domain.Document) (decimal.Decimal, error) {
	switch {
	case isInvoice(doc.DocumentType):
		if len(doc.Lines) == 0 {
			return decimal.Zero, fmt.Errorf("%w: invoice needs at least one line", ErrDocumentShape)
		}
		if doc.TaxTotal.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: tax total must be non-negative", ErrDocumentShape)
		}
		net := decimal.Zero
		for _, line := range doc.Lines {
			if !line.Amount.IsPositive() {
				return decimal.Zero, fmt.Errorf("%w: line amounts must be positive", ErrDocumentShape)
			}
			if line.Discount.IsNegative() || line.Discount.GreaterThan(line.Amount) {
				return decimal.Zero, fmt.Errorf("%w: line discount must be between zero and the line amount", ErrDocumentShape)
			}
			net = net.Add(line.NetAmount())
		}
		total := net.Add(doc.TaxTotal)
		// A client-supplied total must agree with the lines.
		if !doc.Total.IsZero() && !accounting.WithinTolerance(doc.Total, total) {
			return decimal.Zero, fmt.Errorf("%w: total %s vs lines %s", ErrAmountMismatch, doc.Total.StringFixed(2), total.StringFixed(2))
		}
		return total, nil

	case isTreasury(doc.DocumentType):
		if doc.BankAccountID == "" {
			return decimal.Zero, fmt.Errorf("%w: treasury document needs a bank account", ErrDocumentShape)
		}
		if len(doc.Lines) == 0 {
			return decimal.Zero, fmt.Errorf("%w: treasury document needs at least one allocation line", ErrDocumentShape)
		}
		total := decimal.Zero
		for _, line := range doc.Lines {
			if !line.Amount.IsPositive() {
				return decimal.Zero, fmt.Errorf("%w: allocation amounts must be positive", ErrDocumentShape)
			}
			total = total.Add(line.Amount)
		}
		if !doc.Total.IsZero() && !accounting.WithinTolerance(doc.Total, total) {
			return decimal.Zero, fmt.Errorf("%w: total %s vs allocations %s", ErrAmountMismatch, doc.Total.StringFixed(2), total.StringFixed(2))
		}
		return total, nil

	case doc.DocumentType == domain.Transfer:
		if doc.FromAccountID == "" || doc.ToAccountID == "" {
			return decimal.Zero, fmt.Errorf("%w: transfer needs both source and destination accounts", ErrDocumentShape)
		}
		if doc.FromAccountID == doc.ToAccountID {
			return decimal.Zero, fmt.Errorf("%w: account %s", ErrSameAccountTransfer, doc.FromAccountID)
		}
		if !doc.Total.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: transfer amount must be positive", ErrDocumentShape)
		}
		if len(doc.Lines) > 0 {
			return decimal.Zero, fmt.Errorf("%w: transfers carry no lines", ErrDocumentShape)
		}
		return doc.Total, nil

	default:
		return decimal.Zero, fmt.Errorf("%w: unknown document type %s", ErrDocumentShape, doc.DocumentType)
	}
}

// CreateDocument persists a new draft document after validating its
// type-specific shape.
func (s *documentService) CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, userID string) (*domain.Document, error) {
	now := time.Now().UTC()
	documentID := ids.New()

	doc := domain.Document{
		DocumentID:   documentID,
		DocumentType: req.DocumentType,
		DocumentDate: req.DocumentDate,
		Counterparty: req.Counterparty,
		Description:  req.Description,
		Status:       domain.DocumentDraft,
		Total:        req.Total,
		TaxTotal:     req.TaxTotal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.BankAccountID != nil {
		doc.BankAccountID = *req.BankAccountID
	}
	if req.FromAccountID != nil {
		doc.FromAccountID = *req.FromAccountID
	}
	if req.ToAccountID != nil {
		doc.ToAccountID = *req.ToAccountID
	}
	doc.Lines = make([]domain.DocumentLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		doc.Lines[i] = domain.DocumentLine{
			LineID:      ids.New(),
			DocumentID:  documentID,
			AccountID:   lineReq.AccountID,
			Description: lineReq.Description,
			Amount:      lineReq.Amount,
			Discount:    lineReq.Discount,
		}
	}

	total, err := s.validateDocumentShape(&doc)
	if err != nil {
		return nil, err
	}
	doc.Total = total

	number, err := s.documentRepo.NextDocumentNumber(ctx, doc.DocumentType)
	if err != nil {
		s.LogError(ctx, err, "Failed to reserve document number", slog.String("document_type", string(doc.DocumentType)))
		return nil, fmt.Errorf("failed to reserve document number: %w", err)
	}
	doc.DocumentNumber = number

	if err := s.documentRepo.SaveDocument(ctx, doc, doc.Lines); err != nil {
		s.LogError(ctx, err, "Failed to save document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.LogInfo(ctx, "Document created", slog.String("document_id", documentID), slog.String("document_number", number))
	return &doc, nil
}

// GetDocumentByID retrieves a document and its lines.
func (s *documentService) GetDocumentByID(ctx context.Context, documentID string, userID string) (*domain.Document, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find document", slog.String("document_id", documentID))
		}
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	lines, err := s.documentRepo.FindLinesByDocumentID(ctx, documentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to fetch lines for document %s: %w", documentID, err)
	}
	doc.Lines = lines
	return doc, nil
}

// ListDocuments retrieves a paginated list of documents.
func (s *documentService) ListDocuments(ctx context.Context, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	var docType *domain.DocumentType
	if params.DocumentType != nil {
		t := domain.DocumentType(*params.DocumentType)
		docType = &t
	}

	docs, nextToken, err := s.documentRepo.ListDocuments(ctx, docType, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list documents")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &dto.ListDocumentsResponse{
		Documents: dto.ToDocumentResponses(docs),
		NextToken: nextToken,
	}, nil
}

// UpdateDocument updates a draft document's header and, when requested,
// replaces its lines. Posted documents must be unposted before editing.
func (s *documentService) UpdateDocument(ctx context.Context, documentID string, req dto.UpdateDocumentRequest, userID string) (*domain.Document, error) {
	doc, err := s.GetDocumentByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentDraft {
		return nil, fmt.Errorf("%w: document %s", ErrDocumentNotDraft, doc.DocumentNumber)
	}

	now := time.Now().UTC()
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}
	if req.Counterparty != nil {
		doc.Counterparty = *req.Counterparty
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Total != nil {
		doc.Total = *req.Total
	}
	if req.TaxTotal != nil {
		doc.TaxTotal = *req.TaxTotal
	}
	if req.BankAccountID != nil {
		doc.BankAccountID = *req.BankAccountID
	}
	if req.FromAccountID != nil {
		doc.FromAccountID = *req.FromAccountID
	}
	if req.ToAccountID != nil {
		doc.ToAccountID = *req.ToAccountID
	}

	replaceLines := req.Lines != nil
	if replaceLines {
		doc.Lines = make([]domain.DocumentLine, len(req.Lines))
		for i, lineReq := range req.Lines {
			doc.Lines[i] = domain.DocumentLine{
				LineID:      ids.New(),
				DocumentID:  documentID,
				AccountID:   lineReq.AccountID,
				Description: lineReq.Description,
				Amount:      lineReq.Amount,
				Discount:    lineReq.Discount,
			}
		}
	}

	total, err := s.validateDocumentShape(doc)
	if err != nil {
		return nil, err
	}
	doc.Total = total
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID

	if err := s.documentRepo.UpdateDocument(ctx, *doc); err != nil {
		s.LogError(ctx, err, "Failed to update document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to update document %s: %w", documentID, err)
	}
	if replaceLines {
		if err := s.documentRepo.ReplaceDocumentLines(ctx, documentID, doc.Lines); err != nil {
			s.LogError(ctx, err, "Failed to replace lines for document", slog.String("document_id", documentID))
			return nil, fmt.Errorf("failed to replace lines for document %s: %w", documentID, err)
		}
	}

	s.LogInfo(ctx, "Document updated", slog.String("document_id", documentID))
	return doc, nil
}

// DeleteDocument removes a draft document, its lines and any stale draft entry
// it still owns.
func (s *documentService) DeleteDocument(ctx context.Context, documentID string, userID string) error {
	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.Status != domain.DocumentDraft {
		return fmt.Errorf("%w: document %s", ErrDocumentNotDraft, doc.DocumentNumber)
	}

	if err := s.documentRepo.DeleteDocument(ctx, documentID); err != nil {
		s.LogError(ctx, err, "Failed to delete document", slog.String("document_id", documentID))
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}

	s.LogInfo(ctx, "Document deleted", slog.String("document_id", documentID), slog.String("document_number", doc.DocumentNumber))
	return nil
}

// resolveDefault looks up the account behind a posting role, translating a
// missing configuration into ErrUnresolvedAccount.
func (s *documentService) resolveDefault(ctx context.Context, role domain.DefaultAccountRole) (*domain.Account, error) {
	account, err := s.accountRepo.FindDefaultAccount(ctx, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedAccount, role)
		}
		return nil, fmt.Errorf("failed to resolve default account for role %s: %w", role, err)
	}
	return account, nil
}

// debitLine and creditLine build single-sided journal lines for derived entries.
func debitLine(entryID, accountID string, amount decimal.Decimal, description, userID string, now time.Time) domain.JournalLine {
	return domain.JournalLine{
		LineID:      ids.New(),
		EntryID:     entryID,
		AccountID:   accountID,
		Debit:       amount,
		Credit:      decimal.Zero,
		Description: description,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
	}
}

func creditLine(entryID, accountID string, amount decimal.Decimal, description, userID string, now time.Time) domain.JournalLine {
	return domain.JournalLine{
		LineID:      ids.New(),
		EntryID:     entryID,
		AccountID:   accountID,
		Debit:       decimal.Zero,
		Credit:      amount,
		Description: description,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
	}
}

// deriveEntryLines builds the balanced journal lines for a document according
// to its type's posting recipe. A zero tax total emits no tax line.
func (s *documentService) deriveEntryLines(ctx context.Context, doc *domain.Document, entryID string, userID string, now time.Time) ([]domain.JournalLine, error) {
	lines := []domain.JournalLine{}

	switch doc.DocumentType {
	case domain.SalesInvoice:
		ar, err := s.resolveDefault(ctx, domain.RoleAccountsReceivable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, debitLine(entryID, ar.AccountID, doc.Total, doc.Counterparty, userID, now))
		for _, docLine := range doc.Lines {
			lines = append(lines, creditLine(entryID, docLine.AccountID, docLine.NetAmount(), docLine.Description, userID, now))
		}
		if doc.TaxTotal.IsPositive() {
			tax, err := s.resolveDefault(ctx, domain.RoleTaxLiability)
			if err != nil {
				return nil, err
			}
			lines = append(lines, creditLine(entryID, tax.AccountID, doc.TaxTotal, "tax on "+doc.DocumentNumber, userID, now))
		}

	case domain.PurchaseInvoice:
		ap, err := s.resolveDefault(ctx, domain.RoleAccountsPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, creditLine(entryID, ap.AccountID, doc.Total, doc.Counterparty, userID, now))
		for _, docLine := range doc.Lines {
			lines = append(lines, debitLine(entryID, docLine.AccountID, docLine.NetAmount(), docLine.Description, userID, now))
		}
		if doc.TaxTotal.IsPositive() {
			tax, err := s.resolveDefault(ctx, domain.RoleTaxLiability)
			if err != nil {
				return nil, err
			}
			lines = append(lines, debitLine(entryID, tax.AccountID, doc.TaxTotal, "tax on "+doc.DocumentNumber, userID, now))
		}

	case domain.Receipt:
		lines = append(lines, debitLine(entryID, doc.BankAccountID, doc.Total, doc.Counterparty, userID, now))
		for _, docLine := range doc.Lines {
			lines = append(lines, creditLine(entryID, docLine.AccountID, docLine.Amount, docLine.Description, userID, now))
		}

	case domain.Payment:
		lines = append(lines, creditLine(entryID, doc.BankAccountID, doc.Total, doc.Counterparty, userID, now))
		for _, docLine := range doc.Lines {
			lines = append(lines, debitLine(entryID, docLine.AccountID, docLine.Amount, docLine.Description, userID, now))
		}

	case domain.Transfer:
		lines = append(lines,
			debitLine(entryID, doc.ToAccountID, doc.Total, doc.Description, userID, now),
			creditLine(entryID, doc.FromAccountID, doc.Total, doc.Description, userID, now),
		)

	default:
		return nil, fmt.Errorf("%w: unknown document type %s", ErrDocumentShape, doc.DocumentType)
	}

	return lines, nil
}

// ApproveDocument derives the balanced journal entry for a draft document and
// posts it atomically: the entry, the document status flip, the owning FK and
// the balance updates commit or roll back together.
func (s *documentService) ApproveDocument(ctx context.Context, documentID string, userID string) (*domain.Document, error) {
	doc, err := s.GetDocumentByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentDraft {
		return nil, fmt.Errorf("%w: document %s", ErrDocumentNotDraft, doc.DocumentNumber)
	}

	total, err := s.validateDocumentShape(doc)
	if err != nil {
		return nil, err
	}
	doc.Total = total

	now := time.Now().UTC()
	entryID := ids.New()

	lines, err := s.deriveEntryLines(ctx, doc, entryID, userID, now)
	if err != nil {
		return nil, err
	}

	// The recipe guarantees balance, but verify before touching balances.
	debit, credit := accounting.EntryTotals(lines)
	if !accounting.WithinTolerance(debit, credit) {
		return nil, fmt.Errorf("%w: debit %s vs credit %s", ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
	}

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
		return nil, fmt.Errorf("failed to fetch posting accounts: %w", err)
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

	balanceChanges, err := accounting.BalanceChanges(lines, accountTypesOf(accounts))
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}

	entryNumber, err := s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve entry number: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     entryNumber,
		TransactionDate: doc.DocumentDate,
		Reference:       doc.DocumentNumber,
		Description:     doc.Description,
		Status:          domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// A draft entry left behind by a previous unpost is replaced, not reused.
	staleEntryID := doc.EntryID

	if err := s.documentRepo.SavePosting(ctx, documentID, staleEntryID, entry, lines, balanceChanges, userID); err != nil {
		s.LogError(ctx, err, "Failed to post document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to post document %s: %w", documentID, err)
	}

	s.LogInfo(ctx, "Document posted",
		slog.String("document_id", documentID),
		slog.String("document_number", doc.DocumentNumber),
		slog.String("entry_number", entryNumber))

	doc.Status = domain.DocumentPosted
	doc.EntryID = &entryID
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	return doc, nil
}

// UnpostDocument reverts a posted document and its derived entry to draft.
// The exact decimals stored on the entry lines are negated and backed out, so
// approve followed by unpost restores every balance bit for bit.
func (s *documentService) UnpostDocument(ctx context.Context, documentID string, userID string) (*domain.Document, error) {
	doc, err := s.GetDocumentByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentPosted {
		return nil, fmt.Errorf("%w: document %s has status %s", ErrDocumentNotPosted, doc.DocumentNumber, doc.Status)
	}
	if doc.EntryID == nil {
		return nil, apperrors.NewAppError(500, "posted document "+doc.DocumentNumber+" has no entry reference", apperrors.ErrIntegrity)
	}
	entryID := *doc.EntryID

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

	if err := s.documentRepo.SaveUnposting(ctx, documentID, entryID, reversal, userID); err != nil {
		s.LogError(ctx, err, "Failed to unpost document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to unpost document %s: %w", documentID, err)
	}

	s.LogInfo(ctx, "Document unposted", slog.String("document_id", documentID), slog.String("document_number", doc.DocumentNumber))

	now := time.Now().UTC()
	doc.Status = domain.DocumentDraft
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	return doc, nil
}
