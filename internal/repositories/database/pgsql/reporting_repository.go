package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
)

// signedAmountExpr folds a line's debit/credit pair into its natural-sign
// contribution: debit-normal types grow with debits, the rest with credits.
const signedAmountExpr = `CASE WHEN a.account_type IN ('ASSET', 'EXPENSE') THEN l.debit - l.credit ELSE l.credit - l.debit END`

type ReportingRepository struct {
	pool *pgxpool.Pool
}

// newReportingRepository creates a new repository for financial report data.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &ReportingRepository{pool: pool}
}

// Ensure ReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// GetTrialBalanceData retrieves per-leaf-account debit and credit totals from
// posted entries up to and including asOf. Accounts with no postings are
// omitted.
func (r *ReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0) AS total_debit,
		       COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.status = 'POSTED' AND e.transaction_date <= $1
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountID, &row.Code, &row.AccountName, &row.AccountType, &row.Debit, &row.Credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetLedgerLines retrieves the posted lines of one account within a period.
// Running balances are computed by the service, which knows the sign
// convention context.
func (r *ReportingRepository) GetLedgerLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerRow, error) {
	query := `
		SELECT e.entry_id, e.entry_number, e.transaction_date, e.reference, l.description,
		       a.account_id, a.code, a.name, a.account_type, l.debit, l.credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.account_id = $1 AND e.status = 'POSTED'
		  AND e.transaction_date >= $2 AND e.transaction_date <= $3
		ORDER BY e.transaction_date, e.entry_number, l.line_id;
	`
	rows, err := r.pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger lines for account "+accountID, err)
	}
	defer rows.Close()

	result := []domain.LedgerRow{}
	for rows.Next() {
		var row domain.LedgerRow
		if err := rows.Scan(
			&row.EntryID,
			&row.EntryNumber,
			&row.TransactionDate,
			&row.Reference,
			&row.Description,
			&row.AccountID,
			&row.Code,
			&row.AccountName,
			&row.AccountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger row for account "+accountID, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetOpeningBalance computes the natural-sign balance of an account from
// postings strictly before the given date.
func (r *ReportingRepository) GetOpeningBalance(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + signedAmountExpr + `), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.account_id = $1 AND e.status = 'POSTED' AND e.transaction_date < $2;
	`
	var balance decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID, before).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to compute opening balance for account "+accountID, err)
	}
	return balance, nil
}

// GetAccountMovements retrieves per-account natural-sign net movements from
// posted entries within a period.
func (r *ReportingRepository) GetAccountMovements(ctx context.Context, from, to time.Time) ([]domain.AccountMovement, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(` + signedAmountExpr + `), 0) AS net_movement
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.status = 'POSTED' AND e.transaction_date >= $1 AND e.transaction_date <= $2
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account movements", err)
	}
	defer rows.Close()

	result := []domain.AccountMovement{}
	for rows.Next() {
		var m domain.AccountMovement
		if err := rows.Scan(&m.AccountID, &m.Code, &m.Name, &m.AccountType, &m.NetMovement); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account movement row", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetTypeTotals retrieves natural-sign balance totals grouped by account type
// from posted entries up to and including asOf.
func (r *ReportingRepository) GetTypeTotals(ctx context.Context, asOf time.Time) (map[domain.AccountType]decimal.Decimal, error) {
	query := `
		SELECT a.account_type, COALESCE(SUM(` + signedAmountExpr + `), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.status = 'POSTED' AND e.transaction_date <= $1
		GROUP BY a.account_type;
	`
	return r.queryTypeTotals(ctx, query, asOf)
}

// GetPeriodTypeTotals retrieves natural-sign totals grouped by account type
// from posted entries within a period.
func (r *ReportingRepository) GetPeriodTypeTotals(ctx context.Context, from, to time.Time) (map[domain.AccountType]decimal.Decimal, error) {
	query := `
		SELECT a.account_type, COALESCE(SUM(` + signedAmountExpr + `), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.status = 'POSTED' AND e.transaction_date >= $1 AND e.transaction_date <= $2
		GROUP BY a.account_type;
	`
	return r.queryTypeTotals(ctx, query, from, to)
}

func (r *ReportingRepository) queryTypeTotals(ctx context.Context, query string, args ...any) (map[domain.AccountType]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query type totals", err)
	}
	defer rows.Close()

	totals := make(map[domain.AccountType]decimal.Decimal)
	for rows.Next() {
		var accountType domain.AccountType
		var total decimal.Decimal
		if err := rows.Scan(&accountType, &total); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan type total row", err)
		}
		totals[accountType] = total
	}
	return totals, rows.Err()
}

// GetComputedBalances recomputes every account's natural-sign balance from its
// posted lines. Accounts with no postings come back as zero so drift on them
// is detectable too.
func (r *ReportingRepository) GetComputedBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `
		SELECT a.account_id,
		       COALESCE(SUM(` + signedAmountExpr + `) FILTER (WHERE e.status = 'POSTED'), 0)
		FROM accounts a
		LEFT JOIN journal_entry_lines l ON l.account_id = a.account_id
		LEFT JOIN journal_entries e ON e.entry_id = l.entry_id
		GROUP BY a.account_id;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query computed balances", err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var balance decimal.Decimal
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan computed balance row", err)
		}
		balances[accountID] = balance
	}
	return balances, rows.Err()
}
