package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/core/services"
	"github.com/openbooks/openbooks_backend/internal/ids"
)

// --- Test Suite Setup ---

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockAccountRepo   *MockAccountRepository
	service           portssvc.ReconciliationService
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewReconciliationService(suite.mockReportingRepo, suite.mockAccountRepo)
}

// --- Test Cases ---

func (suite *ReconciliationServiceTestSuite) TestReconcileBalances_Clean() {
	ctx := context.Background()
	bankID := ids.New()
	salesID := ids.New()
	accounts := []domain.Account{
		{AccountID: bankID, Code: "1100", Name: "Bank", AccountType: domain.Asset, Balance: decimal.RequireFromString("118")},
		{AccountID: salesID, Code: "4000", Name: "Sales", AccountType: domain.Revenue, Balance: decimal.RequireFromString("100")},
	}
	computed := map[string]decimal.Decimal{
		bankID:  decimal.RequireFromString("118"),
		salesID: decimal.RequireFromString("100"),
	}

	suite.mockReportingRepo.On("GetComputedBalances", ctx).Return(computed, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()

	drifted, err := suite.service.ReconcileBalances(ctx, ids.New())

	suite.Require().NoError(err)
	suite.Empty(drifted)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcileBalances_DriftLocksAccount() {
	ctx := context.Background()
	userID := ids.New()
	bankID := ids.New()
	salesID := ids.New()
	accounts := []domain.Account{
		{AccountID: bankID, Code: "1100", Name: "Bank", AccountType: domain.Asset, Balance: decimal.RequireFromString("120")},
		{AccountID: salesID, Code: "4000", Name: "Sales", AccountType: domain.Revenue, Balance: decimal.RequireFromString("100")},
	}
	computed := map[string]decimal.Decimal{
		bankID:  decimal.RequireFromString("118"),
		salesID: decimal.RequireFromString("100"),
	}

	suite.mockReportingRepo.On("GetComputedBalances", ctx).Return(computed, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockAccountRepo.On("SetAccountLock", ctx, bankID, true, userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	drifted, err := suite.service.ReconcileBalances(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().Len(drifted, 1)
	suite.Equal(bankID, drifted[0].AccountID)
	suite.True(drifted[0].CachedBalance.Equal(decimal.RequireFromString("120")))
	suite.True(drifted[0].ComputedBalance.Equal(decimal.RequireFromString("118")))
	suite.True(drifted[0].Difference.Equal(decimal.RequireFromString("2")))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcileBalances_GroupAccountsSkipped() {
	ctx := context.Background()
	groupID := ids.New()
	// The group's cached balance never tracks postings, so it must not be
	// compared against the computed map.
	accounts := []domain.Account{
		{AccountID: groupID, Code: "1000", Name: "Current Assets", AccountType: domain.Asset, IsGroup: true, Balance: decimal.RequireFromString("500")},
	}

	suite.mockReportingRepo.On("GetComputedBalances", ctx).Return(map[string]decimal.Decimal{}, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()

	drifted, err := suite.service.ReconcileBalances(ctx, ids.New())

	suite.Require().NoError(err)
	suite.Empty(drifted)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestReconcileBalances_MissingComputedTreatedAsZero() {
	ctx := context.Background()
	userID := ids.New()
	accountID := ids.New()
	// A leaf with a non-zero cached balance but no posted lines at all is drift.
	accounts := []domain.Account{
		{AccountID: accountID, Code: "1200", Name: "Cash", AccountType: domain.Asset, Balance: decimal.RequireFromString("40")},
	}

	suite.mockReportingRepo.On("GetComputedBalances", ctx).Return(map[string]decimal.Decimal{}, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()
	suite.mockAccountRepo.On("SetAccountLock", ctx, accountID, true, userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	drifted, err := suite.service.ReconcileBalances(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().Len(drifted, 1)
	suite.True(drifted[0].ComputedBalance.IsZero())
	suite.True(drifted[0].Difference.Equal(decimal.RequireFromString("40")))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// Run the test suite
func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
