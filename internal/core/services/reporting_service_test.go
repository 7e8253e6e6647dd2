package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/core/services"
	"github.com/openbooks/openbooks_backend/internal/ids"
)

// --- Test Suite Setup ---

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockAccountRepo   *MockAccountRepository
	service           portssvc.ReportingService
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockAccountRepo, 1)
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestTrialBalance_NetsEachRow() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	data := []domain.TrialBalanceRow{
		{AccountID: ids.New(), Code: "1100", AccountName: "Bank", AccountType: domain.Asset,
			Debit: decimal.RequireFromString("150"), Credit: decimal.RequireFromString("50")},
		{AccountID: ids.New(), Code: "2100", AccountName: "Accounts Payable", AccountType: domain.Liability,
			Debit: decimal.RequireFromString("20"), Credit: decimal.RequireFromString("120")},
	}

	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, asOf).Return(data, nil).Once()

	report, err := suite.service.TrialBalance(ctx, asOf, ids.New())

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 2)

	// The bank nets to the debit column, the payable to the credit column.
	suite.True(report.Rows[0].Debit.Equal(decimal.RequireFromString("100")))
	suite.True(report.Rows[0].Credit.IsZero())
	suite.True(report.Rows[1].Debit.IsZero())
	suite.True(report.Rows[1].Credit.Equal(decimal.RequireFromString("100")))

	suite.True(report.TotalDebit.Equal(decimal.RequireFromString("100")))
	suite.True(report.TotalCredit.Equal(decimal.RequireFromString("100")))
	suite.True(report.Balanced)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_ReportsImbalance() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	data := []domain.TrialBalanceRow{
		{AccountID: ids.New(), Code: "1100", AccountName: "Bank", AccountType: domain.Asset,
			Debit: decimal.RequireFromString("150"), Credit: decimal.Zero},
		{AccountID: ids.New(), Code: "4000", AccountName: "Sales", AccountType: domain.Revenue,
			Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
	}

	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, asOf).Return(data, nil).Once()

	report, err := suite.service.TrialBalance(ctx, asOf, ids.New())

	suite.Require().NoError(err)
	// The report is still produced; Balanced is diagnostic only.
	suite.False(report.Balanced)
	suite.True(report.TotalDebit.Equal(decimal.RequireFromString("150")))
	suite.True(report.TotalCredit.Equal(decimal.RequireFromString("100")))
}

func (suite *ReportingServiceTestSuite) TestGeneralLedger_DebitNormalRunningBalance() {
	ctx := context.Background()
	accountID := ids.New()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	account := &domain.Account{AccountID: accountID, Code: "1100", Name: "Bank", AccountType: domain.Asset}
	rows := []domain.LedgerRow{
		{EntryNumber: "JE-000001", Debit: decimal.RequireFromString("50"), Credit: decimal.Zero},
		{EntryNumber: "JE-000002", Debit: decimal.Zero, Credit: decimal.RequireFromString("30")},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockReportingRepo.On("GetOpeningBalance", ctx, accountID, from).Return(decimal.RequireFromString("100"), nil).Once()
	suite.mockReportingRepo.On("GetLedgerLines", ctx, accountID, from, to).Return(rows, nil).Once()

	opening, ledger, err := suite.service.GeneralLedger(ctx, accountID, from, to, ids.New())

	suite.Require().NoError(err)
	suite.True(opening.Equal(decimal.RequireFromString("100")))
	suite.Require().Len(ledger, 2)
	suite.True(ledger[0].RunningBalance.Equal(decimal.RequireFromString("150")))
	suite.True(ledger[1].RunningBalance.Equal(decimal.RequireFromString("120")))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestGeneralLedger_CreditNormalRunningBalance() {
	ctx := context.Background()
	accountID := ids.New()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	account := &domain.Account{AccountID: accountID, Code: "4000", Name: "Sales", AccountType: domain.Revenue}
	rows := []domain.LedgerRow{
		{EntryNumber: "JE-000003", Debit: decimal.Zero, Credit: decimal.RequireFromString("200")},
		{EntryNumber: "JE-000004", Debit: decimal.RequireFromString("20"), Credit: decimal.Zero},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockReportingRepo.On("GetOpeningBalance", ctx, accountID, from).Return(decimal.Zero, nil).Once()
	suite.mockReportingRepo.On("GetLedgerLines", ctx, accountID, from, to).Return(rows, nil).Once()

	_, ledger, err := suite.service.GeneralLedger(ctx, accountID, from, to, ids.New())

	suite.Require().NoError(err)
	// Credits grow a revenue account, the debit shrinks it.
	suite.True(ledger[0].RunningBalance.Equal(decimal.RequireFromString("200")))
	suite.True(ledger[1].RunningBalance.Equal(decimal.RequireFromString("180")))
}

func (suite *ReportingServiceTestSuite) TestDashboard_FoldsProfitIntoEquity() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	fyStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	totals := map[domain.AccountType]decimal.Decimal{
		domain.Asset:     decimal.RequireFromString("300"),
		domain.Liability: decimal.RequireFromString("100"),
		domain.Equity:    decimal.RequireFromString("150"),
	}
	periodTotals := map[domain.AccountType]decimal.Decimal{
		domain.Revenue: decimal.RequireFromString("80"),
		domain.Expense: decimal.RequireFromString("30"),
	}

	suite.mockReportingRepo.On("GetTypeTotals", ctx, asOf).Return(totals, nil).Once()
	suite.mockReportingRepo.On("GetPeriodTypeTotals", ctx, fyStart, asOf).Return(periodTotals, nil).Once()

	summary, err := suite.service.Dashboard(ctx, asOf, ids.New())

	suite.Require().NoError(err)
	suite.Equal(fyStart, summary.FiscalYearStart)
	suite.True(summary.CurrentYearProfit.Equal(decimal.RequireFromString("50")))
	suite.True(summary.EquityWithProfit.Equal(decimal.RequireFromString("200")))
	suite.True(summary.OutOfBalance.IsZero())
	suite.True(summary.Balanced)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestDashboard_FiscalYearWrapsBackward() {
	ctx := context.Background()
	// Fiscal year starts in April; a February date falls in the previous year's window.
	service := services.NewReportingService(suite.mockReportingRepo, suite.mockAccountRepo, 4)
	asOf := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	fyStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	suite.mockReportingRepo.On("GetTypeTotals", ctx, asOf).Return(map[domain.AccountType]decimal.Decimal{}, nil).Once()
	suite.mockReportingRepo.On("GetPeriodTypeTotals", ctx, fyStart, asOf).Return(map[domain.AccountType]decimal.Decimal{}, nil).Once()

	summary, err := service.Dashboard(ctx, asOf, ids.New())

	suite.Require().NoError(err)
	suite.Equal(fyStart, summary.FiscalYearStart)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestDashboard_ReportsOutOfBalance() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	fyStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	totals := map[domain.AccountType]decimal.Decimal{
		domain.Asset:     decimal.RequireFromString("310"),
		domain.Liability: decimal.RequireFromString("100"),
		domain.Equity:    decimal.RequireFromString("150"),
	}
	periodTotals := map[domain.AccountType]decimal.Decimal{
		domain.Revenue: decimal.RequireFromString("80"),
		domain.Expense: decimal.RequireFromString("30"),
	}

	suite.mockReportingRepo.On("GetTypeTotals", ctx, asOf).Return(totals, nil).Once()
	suite.mockReportingRepo.On("GetPeriodTypeTotals", ctx, fyStart, asOf).Return(periodTotals, nil).Once()

	summary, err := suite.service.Dashboard(ctx, asOf, ids.New())

	suite.Require().NoError(err)
	suite.True(summary.OutOfBalance.Equal(decimal.RequireFromString("10")))
	suite.False(summary.Balanced)
}

func (suite *ReportingServiceTestSuite) TestAccountMovements_Passthrough() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	movements := []domain.AccountMovement{
		{AccountID: ids.New(), Code: "4000", Name: "Sales", AccountType: domain.Revenue, NetMovement: decimal.RequireFromString("80")},
		{AccountID: ids.New(), Code: "6150", Name: "Office Supplies", AccountType: domain.Expense, NetMovement: decimal.RequireFromString("30")},
	}

	suite.mockReportingRepo.On("GetAccountMovements", ctx, from, to).Return(movements, nil).Once()

	result, err := suite.service.AccountMovements(ctx, from, to, ids.New())

	suite.Require().NoError(err)
	suite.Equal(movements, result)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

// Run the test suite
func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
