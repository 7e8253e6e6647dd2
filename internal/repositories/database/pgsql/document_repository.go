package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	"github.com/openbooks/openbooks_backend/internal/models"
	"github.com/openbooks/openbooks_backend/internal/utils/mapping"
	"github.com/openbooks/openbooks_backend/internal/utils/pagination"
)

const documentColumns = `document_id, document_number, document_type, document_date, counterparty, description, status, total, tax_total, bank_account_id, from_account_id, to_account_id, entry_id, created_at, created_by, last_updated_at, last_updated_by`
const documentLineColumns = `line_id, document_id, account_id, description, amount, discount`

// documentNumberPrefixes maps each document type to its number prefix.
var documentNumberPrefixes = map[domain.DocumentType]string{
	domain.SalesInvoice:    "INV",
	domain.PurchaseInvoice: "PINV",
	domain.Receipt:         "RCT",
	domain.Payment:         "PAY",
	domain.Transfer:        "TRF",
}

type PgxDocumentRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxDocumentRepository creates a new repository for document data.
func newPgxDocumentRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryWithTx
var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

func scanDocument(row pgx.Row) (models.Document, error) {
	var m models.Document
	var bankID, fromID, toID, entryID sql.NullString
	err := row.Scan(
		&m.DocumentID,
		&m.DocumentNumber,
		&m.DocumentType,
		&m.DocumentDate,
		&m.Counterparty,
		&m.Description,
		&m.Status,
		&m.Total,
		&m.TaxTotal,
		&bankID,
		&fromID,
		&toID,
		&entryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Document{}, err
	}
	if bankID.Valid {
		m.BankAccountID = bankID.String
	}
	if fromID.Valid {
		m.FromAccountID = fromID.String
	}
	if toID.Valid {
		m.ToAccountID = toID.String
	}
	if entryID.Valid {
		m.EntryID = &entryID.String
	}
	return m, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// queueDocumentLineInserts adds one insert per document line to the batch.
func queueDocumentLineInserts(batch *pgx.Batch, lines []domain.DocumentLine) {
	query := `
		INSERT INTO document_lines (` + documentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, line := range lines {
		m := mapping.ToModelDocumentLine(line)
		batch.Queue(query, m.LineID, m.DocumentID, m.AccountID, m.Description, m.Amount, m.Discount)
	}
}

// SaveDocument persists a new draft document with its lines in one transaction.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, document domain.Document, lines []domain.DocumentLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelDocument(document)
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	var entryID sql.NullString
	if m.EntryID != nil {
		entryID = sql.NullString{String: *m.EntryID, Valid: true}
	}
	_, err = tx.Exec(ctx, query,
		m.DocumentID,
		m.DocumentNumber,
		m.DocumentType,
		m.DocumentDate,
		m.Counterparty,
		m.Description,
		m.Status,
		m.Total,
		m.TaxTotal,
		nullable(m.BankAccountID),
		nullable(m.FromAccountID),
		nullable(m.ToAccountID),
		entryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert document "+m.DocumentID, err)
	}

	batch := &pgx.Batch{}
	queueDocumentLineInserts(batch, lines)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for document "+m.DocumentID, err)
	}

	return r.Commit(ctx, tx)
}

// FindDocumentByID retrieves a document header by its ID.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1;`

	m, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find document by ID "+documentID, err)
	}

	domainDoc := mapping.ToDomainDocument(m)
	return &domainDoc, nil
}

// FindDocumentByEntryID retrieves the document owning the given journal entry
// via its entry FK, or apperrors.ErrNotFound when the entry is freestanding.
func (r *PgxDocumentRepository) FindDocumentByEntryID(ctx context.Context, entryID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE entry_id = $1;`

	m, err := scanDocument(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find document by entry ID "+entryID, err)
	}

	domainDoc := mapping.ToDomainDocument(m)
	return &domainDoc, nil
}

// FindLinesByDocumentID retrieves all lines of a single document in insertion order.
func (r *PgxDocumentRepository) FindLinesByDocumentID(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	query := `SELECT ` + documentLineColumns + ` FROM document_lines WHERE document_id = $1 ORDER BY line_id;`

	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for document "+documentID, err)
	}
	defer rows.Close()

	lines := []models.DocumentLine{}
	for rows.Next() {
		var m models.DocumentLine
		if err := rows.Scan(&m.LineID, &m.DocumentID, &m.AccountID, &m.Description, &m.Amount, &m.Discount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for document "+documentID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for document "+documentID, err)
	}

	return mapping.ToDomainDocumentLineSlice(lines), nil
}

// ListDocuments retrieves a paginated list of documents, optionally filtered by
// type, using token-based pagination. Ordering is newest first, by document
// date with creation time as the tie-breaker.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, docType *domain.DocumentType, limit int, nextToken *string) ([]domain.Document, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + documentColumns + ` FROM documents`
	orderByClause := `ORDER BY document_date DESC, created_at DESC`

	clauses := []string{}
	args := []interface{}{}
	if docType != nil {
		args = append(args, string(*docType))
		clauses = append(clauses, `document_type = $`+strconv.Itoa(len(args)))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		clauses = append(clauses, `(document_date, created_at) < ($`+strconv.Itoa(len(args)-1)+`, $`+strconv.Itoa(len(args))+`)`)
	}

	query := baseQuery
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	args = append(args, fetchLimit)
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query documents", err)
	}
	defer rows.Close()

	modelDocs := make([]models.Document, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan document row", scanErr)
		}
		modelDocs = append(modelDocs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating document rows", err)
	}

	var nextTokenVal *string
	results := modelDocs
	if len(modelDocs) > limit {
		lastDoc := modelDocs[limit-1]
		newToken := pagination.EncodeToken(lastDoc.DocumentDate, lastDoc.CreatedAt)
		nextTokenVal = &newToken
		results = modelDocs[:limit]
	}

	domainDocs := make([]domain.Document, len(results))
	for i, m := range results {
		domainDocs[i] = mapping.ToDomainDocument(m)
	}
	return domainDocs, nextTokenVal, nil
}

// UpdateDocument updates the header fields of a draft document.
func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, document domain.Document) error {
	m := mapping.ToModelDocument(document)

	query := `
		UPDATE documents
		SET document_date = $2, counterparty = $3, description = $4, total = $5, tax_total = $6,
		    bank_account_id = $7, from_account_id = $8, to_account_id = $9,
		    last_updated_at = $10, last_updated_by = $11
		WHERE document_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.DocumentID,
		m.DocumentDate,
		m.Counterparty,
		m.Description,
		m.Total,
		m.TaxTotal,
		nullable(m.BankAccountID),
		nullable(m.FromAccountID),
		nullable(m.ToAccountID),
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update document "+m.DocumentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReplaceDocumentLines deletes and re-inserts the lines of a draft document in
// one transaction.
func (r *PgxDocumentRepository) ReplaceDocumentLines(ctx context.Context, documentID string, lines []domain.DocumentLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1;`, documentID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for document "+documentID, err)
	}

	batch := &pgx.Batch{}
	queueDocumentLineInserts(batch, lines)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to re-insert lines for document "+documentID, err)
	}

	return r.Commit(ctx, tx)
}

// DeleteDocument removes a draft document, its lines and any stale draft entry
// it still owns, in one transaction.
func (r *PgxDocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var entryID sql.NullString
	err = tx.QueryRow(ctx, `SELECT entry_id FROM documents WHERE document_id = $1;`, documentID).Scan(&entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to load document "+documentID+" for delete", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1;`, documentID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for document "+documentID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE document_id = $1;`, documentID); err != nil {
		return apperrors.NewAppError(500, "failed to delete document "+documentID, err)
	}
	if entryID.Valid {
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entryID.String); err != nil {
			return apperrors.NewAppError(500, "failed to delete lines of owned entry "+entryID.String, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID.String); err != nil {
			return apperrors.NewAppError(500, "failed to delete owned entry "+entryID.String, err)
		}
	}

	return r.Commit(ctx, tx)
}

// NextDocumentNumber reserves the next sequential number for a document type.
// The per-type counters live in document_counters and are claimed with an
// atomic increment, so concurrent approvals never share a number.
func (r *PgxDocumentRepository) NextDocumentNumber(ctx context.Context, docType domain.DocumentType) (string, error) {
	prefix, ok := documentNumberPrefixes[docType]
	if !ok {
		return "", apperrors.NewAppError(500, "unknown document type "+string(docType), nil)
	}

	query := `
		UPDATE document_counters
		SET next_value = next_value + 1
		WHERE document_type = $1
		RETURNING next_value;
	`
	var n int64
	if err := r.Pool.QueryRow(ctx, query, string(docType)).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewAppError(500, "no counter row for document type "+string(docType), err)
		}
		return "", apperrors.NewAppError(500, "failed to reserve document number", err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

// SavePosting persists the derived entry and its lines, marks the document
// POSTED with the entry FK set, and applies the balance deltas, all in one
// transaction. A previous draft entry left behind by an earlier unpost is
// deleted after the document is repointed at the new entry.
func (r *PgxDocumentRepository) SavePosting(ctx context.Context, documentID string, staleEntryID *string, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := entry.LastUpdatedAt

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for posting", err)
	}

	m := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, entryQuery,
		m.EntryID,
		m.EntryNumber,
		m.TransactionDate,
		m.Reference,
		m.Description,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert derived entry "+m.EntryID, err)
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, lines)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for derived entry "+m.EntryID, err)
	}

	// Guarding on DRAFT makes a lost approval race match zero rows instead of
	// posting the document twice.
	docQuery := `
		UPDATE documents
		SET status = $2, entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE document_id = $1 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, docQuery, documentID, string(domain.DocumentPosted), m.EntryID, now, userID, string(domain.DocumentDraft))
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark document "+documentID+" posted", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "document "+documentID+" is not in DRAFT status", apperrors.ErrConflict)
	}

	// The document now points at the new entry, so the stale one is unreferenced.
	if staleEntryID != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, *staleEntryID); err != nil {
			return apperrors.NewAppError(500, "failed to delete lines of stale entry "+*staleEntryID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, *staleEntryID); err != nil {
			return apperrors.NewAppError(500, "failed to delete stale entry "+*staleEntryID, err)
		}
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances for posting", err)
	}

	return r.Commit(ctx, tx)
}

// SaveUnposting reverts the document and its derived entry to DRAFT and applies
// the negated balance deltas, all in one transaction. The entry and the FK are
// kept so the posting can be inspected and re-approved.
func (r *PgxDocumentRepository) SaveUnposting(ctx context.Context, documentID string, entryID string, balanceChanges map[string]decimal.Decimal, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for unposting", err)
	}

	// Both guards require POSTED so a lost unposting race matches zero rows
	// instead of reversing the deltas twice.
	entryQuery := `
		UPDATE journal_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, entryQuery, entryID, string(domain.Draft), now, userID, string(domain.Posted))
	if err != nil {
		return apperrors.NewAppError(500, "failed to revert entry "+entryID+" to draft", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "entry "+entryID+" is not in POSTED status", apperrors.ErrConflict)
	}

	docQuery := `
		UPDATE documents
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1 AND status = $5;
	`
	cmdTag, err = tx.Exec(ctx, docQuery, documentID, string(domain.DocumentDraft), now, userID, string(domain.DocumentPosted))
	if err != nil {
		return apperrors.NewAppError(500, "failed to revert document "+documentID+" to draft", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "document "+documentID+" is not in POSTED status", apperrors.ErrConflict)
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances for unposting", err)
	}

	return r.Commit(ctx, tx)
}
