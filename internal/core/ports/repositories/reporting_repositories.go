package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data.
// All queries read posted entries only.
type ReportingRepository interface {
	// GetTrialBalanceData retrieves per-leaf-account debit and credit totals
	// up to and including asOf.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetLedgerLines retrieves the posted lines of one account within a period,
	// ordered by transaction date then creation time.
	GetLedgerLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerRow, error)

	// GetOpeningBalance computes the signed balance of an account from postings
	// strictly before the given date.
	GetOpeningBalance(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, error)

	// GetAccountMovements retrieves per-account debit and credit totals within
	// a period.
	GetAccountMovements(ctx context.Context, from, to time.Time) ([]domain.AccountMovement, error)

	// GetTypeTotals retrieves signed balance totals grouped by account type up
	// to and including asOf.
	GetTypeTotals(ctx context.Context, asOf time.Time) (map[domain.AccountType]decimal.Decimal, error)

	// GetPeriodTypeTotals retrieves signed totals grouped by account type for
	// postings within a period.
	GetPeriodTypeTotals(ctx context.Context, from, to time.Time) (map[domain.AccountType]decimal.Decimal, error)

	// GetComputedBalances recomputes every account's balance from its posted
	// lines. Used to detect drift against the cached balances.
	GetComputedBalances(ctx context.Context) (map[string]decimal.Decimal, error)
}
