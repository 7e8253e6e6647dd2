package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, asOf time.Time, userID string) (*domain.TrialBalance, error)

	// GeneralLedger generates the movement history of one account for a period.
	// It returns the opening balance and the period's rows with running balances.
	GeneralLedger(ctx context.Context, accountID string, from, to time.Time, userID string) (decimal.Decimal, []domain.LedgerRow, error)

	// AccountMovements generates per-account net movements for a period
	AccountMovements(ctx context.Context, from, to time.Time, userID string) ([]domain.AccountMovement, error)

	// Dashboard generates the balance sheet style summary with the current
	// fiscal year's unclosed profit folded into equity
	Dashboard(ctx context.Context, asOf time.Time, userID string) (*domain.DashboardSummary, error)
}

// ReconciliationService defines the balance integrity check
type ReconciliationService interface {
	// ReconcileBalances recomputes every account balance from posted lines,
	// reports accounts whose cached balance drifted, and locks them against
	// further posting until resolved.
	ReconcileBalances(ctx context.Context, userID string) ([]domain.ReconciliationRow, error)
}
