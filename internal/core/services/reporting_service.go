package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/utils/accounting"
)

// reportingService builds read-only financial reports from posted entries.
type reportingService struct {
	BaseService
	reportingRepo        portsrepo.ReportingRepository
	accountRepo          portsrepo.AccountRepositoryFacade
	fiscalYearStartMonth time.Month
}

// NewReportingService creates a new ReportingService. fiscalYearStartMonth
// anchors the dashboard's current-year window (1 = January).
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountRepositoryFacade, fiscalYearStartMonth int) portssvc.ReportingService {
	if fiscalYearStartMonth < 1 || fiscalYearStartMonth > 12 {
		fiscalYearStartMonth = 1
	}
	return &reportingService{
		reportingRepo:        reportingRepo,
		accountRepo:          accountRepo,
		fiscalYearStartMonth: time.Month(fiscalYearStartMonth),
	}
}

// Ensure reportingService implements the portssvc.ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// fiscalYearStart returns the start of the fiscal year containing asOf.
func (s *reportingService) fiscalYearStart(asOf time.Time) time.Time {
	start := time.Date(asOf.Year(), s.fiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	if asOf.Before(start) {
		start = time.Date(asOf.Year()-1, s.fiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	}
	return start
}

// TrialBalance generates per-account cumulative totals as of a date. Each
// account's gross debit and credit sums are netted into a single column, so an
// asset with more credits than debits shows in the credit column.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time, userID string) (*domain.TrialBalance, error) {
	data, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch trial balance data")
		return nil, fmt.Errorf("failed to fetch trial balance data: %w", err)
	}

	report := &domain.TrialBalance{
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(data)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, row := range data {
		net := row.Debit.Sub(row.Credit)
		row.Debit, row.Credit = decimal.Zero, decimal.Zero
		if net.IsNegative() {
			row.Credit = net.Neg()
		} else {
			row.Debit = net
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}
	report.Balanced = accounting.WithinTolerance(report.TotalDebit, report.TotalCredit)

	return report, nil
}

// GeneralLedger generates one account's movement history for a period. The
// running balance starts from the natural-sign opening balance and folds each
// line in with the account's sign convention.
func (s *reportingService) GeneralLedger(ctx context.Context, accountID string, from, to time.Time, userID string) (decimal.Decimal, []domain.LedgerRow, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for ledger report")
		}
		return decimal.Zero, nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	opening, err := s.reportingRepo.GetOpeningBalance(ctx, accountID, from)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute opening balance")
		return decimal.Zero, nil, fmt.Errorf("failed to compute opening balance for account %s: %w", accountID, err)
	}

	rows, err := s.reportingRepo.GetLedgerLines(ctx, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch ledger lines")
		return decimal.Zero, nil, fmt.Errorf("failed to fetch ledger lines for account %s: %w", accountID, err)
	}

	running := opening
	debitNormal := accounting.IsDebitNormal(account.AccountType)
	for i := range rows {
		delta := rows[i].Debit.Sub(rows[i].Credit)
		if !debitNormal {
			delta = delta.Neg()
		}
		running = running.Add(delta)
		rows[i].RunningBalance = running
	}

	return opening, rows, nil
}

// AccountMovements generates per-account natural-sign net movements for a
// period. REVENUE and EXPENSE rows form a simple income statement view.
func (s *reportingService) AccountMovements(ctx context.Context, from, to time.Time, userID string) ([]domain.AccountMovement, error) {
	movements, err := s.reportingRepo.GetAccountMovements(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch account movements")
		return nil, fmt.Errorf("failed to fetch account movements: %w", err)
	}
	return movements, nil
}

// Dashboard generates the balance sheet style summary. The fiscal year's
// unclosed profit is folded into equity before the out-of-balance check, since
// no closing entries move it there until year end.
func (s *reportingService) Dashboard(ctx context.Context, asOf time.Time, userID string) (*domain.DashboardSummary, error) {
	totals, err := s.reportingRepo.GetTypeTotals(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch cumulative type totals")
		return nil, fmt.Errorf("failed to fetch cumulative type totals: %w", err)
	}

	fyStart := s.fiscalYearStart(asOf)
	periodTotals, err := s.reportingRepo.GetPeriodTypeTotals(ctx, fyStart, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch fiscal year type totals")
		return nil, fmt.Errorf("failed to fetch fiscal year type totals: %w", err)
	}

	revenue := periodTotals[domain.Revenue]
	expense := periodTotals[domain.Expense]
	profit := revenue.Sub(expense)
	equityWithProfit := totals[domain.Equity].Add(profit)
	outOfBalance := totals[domain.Asset].Sub(totals[domain.Liability]).Sub(equityWithProfit)

	return &domain.DashboardSummary{
		AsOf:               asOf,
		FiscalYearStart:    fyStart,
		TotalAssets:        totals[domain.Asset],
		TotalLiabilities:   totals[domain.Liability],
		TotalEquity:        totals[domain.Equity],
		CurrentYearRevenue: revenue,
		CurrentYearExpense: expense,
		CurrentYearProfit:  profit,
		EquityWithProfit:   equityWithProfit,
		OutOfBalance:       outOfBalance,
		Balanced:           accounting.WithinTolerance(outOfBalance, decimal.Zero),
	}, nil
}
