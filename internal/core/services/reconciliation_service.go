package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
)

// reconciliationService cross-checks the incrementally maintained account
// balances against balances recomputed from posted lines.
type reconciliationService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountRepositoryFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountRepositoryFacade) portssvc.ReconciliationService {
	return &reconciliationService{
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
	}
}

// Ensure reconciliationService implements the portssvc.ReconciliationService interface
var _ portssvc.ReconciliationService = (*reconciliationService)(nil)

// ReconcileBalances recomputes every leaf account's balance from posted lines
// and compares it with the cached balance. Any exact mismatch is reported and
// the account is locked against further posting until the drift is resolved.
func (s *reconciliationService) ReconcileBalances(ctx context.Context, userID string) ([]domain.ReconciliationRow, error) {
	computed, err := s.reportingRepo.GetComputedBalances(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to recompute account balances")
		return nil, fmt.Errorf("failed to recompute account balances: %w", err)
	}

	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for reconciliation")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	now := time.Now().UTC()
	drifted := []domain.ReconciliationRow{}
	for _, account := range accounts {
		// Group accounts carry no postings of their own.
		if account.IsGroup {
			continue
		}
		computedBalance := computed[account.AccountID]
		difference := account.Balance.Sub(computedBalance)
		if difference.IsZero() {
			continue
		}

		s.LogWarn(ctx, "Account balance drift detected",
			slog.String("account_id", account.AccountID),
			slog.String("code", account.Code),
			slog.String("cached", account.Balance.String()),
			slog.String("computed", computedBalance.String()))

		if err := s.accountRepo.SetAccountLock(ctx, account.AccountID, true, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to lock drifted account", slog.String("account_id", account.AccountID))
			return nil, fmt.Errorf("failed to lock account %s: %w", account.AccountID, err)
		}

		drifted = append(drifted, domain.ReconciliationRow{
			AccountID:       account.AccountID,
			Code:            account.Code,
			Name:            account.Name,
			AccountType:     account.AccountType,
			CachedBalance:   account.Balance,
			ComputedBalance: computedBalance,
			Difference:      difference,
		})
	}

	if len(drifted) == 0 {
		s.LogInfo(ctx, "Reconciliation clean", slog.Int("accounts_checked", len(accounts)))
	} else {
		s.LogWarn(ctx, "Reconciliation found drifted accounts", slog.Int("drift_count", len(drifted)))
	}
	return drifted, nil
}
