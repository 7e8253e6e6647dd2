package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/core/services"
	"github.com/openbooks/openbooks_backend/internal/dto"
	"github.com/openbooks/openbooks_backend/internal/ids"
)

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := ids.New()
	req := dto.CreateAccountRequest{
		Code:        "1100",
		Name:        "Bank",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(createdAccount)
	suite.NotEmpty(createdAccount.AccountID)
	suite.Equal(req.Code, createdAccount.Code)
	suite.Equal(req.Name, createdAccount.Name)
	suite.Equal(req.AccountType, createdAccount.AccountType)
	suite.False(createdAccount.IsGroup)
	suite.False(createdAccount.IsLocked)
	suite.True(createdAccount.Balance.IsZero())
	suite.Equal(creatorUserID, createdAccount.CreatedBy)
	suite.Equal(creatorUserID, createdAccount.LastUpdatedBy)
	suite.WithinDuration(time.Now(), createdAccount.CreatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: ids.New(), Code: "1100", Name: "Bank", AccountType: domain.Asset}

	suite.mockRepo.On("FindAccountByCode", ctx, "1100").Return(existing, nil).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:        "1100",
		Name:        "Another Bank",
		AccountType: domain.Asset,
	}, ids.New())

	suite.Require().Error(err)
	suite.Nil(createdAccount)
	suite.ErrorIs(err, services.ErrDuplicateCode)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotGroup() {
	ctx := context.Background()
	parentID := ids.New()
	parent := &domain.Account{AccountID: parentID, Code: "1000", AccountType: domain.Asset, IsGroup: false}

	suite.mockRepo.On("FindAccountByCode", ctx, "1110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parentID).Return(parent, nil).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:            "1110",
		Name:            "Petty Cash",
		AccountType:     domain.Asset,
		ParentAccountID: &parentID,
	}, ids.New())

	suite.Require().Error(err)
	suite.Nil(createdAccount)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentTypeMismatch() {
	ctx := context.Background()
	parentID := ids.New()
	parent := &domain.Account{AccountID: parentID, Code: "4000", AccountType: domain.Revenue, IsGroup: true}

	suite.mockRepo.On("FindAccountByCode", ctx, "1110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parentID).Return(parent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:            "1110",
		Name:            "Petty Cash",
		AccountType:     domain.Asset,
		ParentAccountID: &parentID,
	}, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CycleRejected() {
	ctx := context.Background()
	accountID := ids.New()
	childGroupID := ids.New()

	// The account being updated is itself an ancestor of the proposed parent.
	account := &domain.Account{AccountID: accountID, Code: "1000", AccountType: domain.Asset, IsGroup: true}
	childGroup := &domain.Account{AccountID: childGroupID, Code: "1100", AccountType: domain.Asset, IsGroup: true, ParentAccountID: accountID}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil)
	suite.mockRepo.On("FindAccountByID", ctx, childGroupID).Return(childGroup, nil)

	_, err := suite.service.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{
		ParentAccountID: &childGroupID,
	}, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameSuccess() {
	ctx := context.Background()
	accountID := ids.New()
	userID := ids.New()
	account := &domain.Account{AccountID: accountID, Code: "1100", Name: "Bank", AccountType: domain.Asset}
	newName := "Main Bank"

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{Name: &newName}, userID)

	suite.Require().NoError(err)
	suite.Equal(newName, updated.Name)
	suite.Equal(userID, updated.LastUpdatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemRefused() {
	ctx := context.Background()
	accountID := ids.New()
	account := &domain.Account{AccountID: accountID, Code: "1300", AccountType: domain.Asset, IsSystem: true}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()

	err := suite.service.DeleteAccount(ctx, accountID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSystemAccount)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_HasPostingsRefused() {
	ctx := context.Background()
	accountID := ids.New()
	account := &domain.Account{AccountID: accountID, Code: "4000", AccountType: domain.Revenue}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockRepo.On("HasPostings", ctx, accountID).Return(true, nil).Once()

	err := suite.service.DeleteAccount(ctx, accountID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInUse)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_HasChildrenRefused() {
	ctx := context.Background()
	accountID := ids.New()
	account := &domain.Account{AccountID: accountID, Code: "1000", AccountType: domain.Asset, IsGroup: true}
	children := []domain.Account{{AccountID: ids.New(), Code: "1100", AccountType: domain.Asset, ParentAccountID: accountID}}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockRepo.On("HasPostings", ctx, accountID).Return(false, nil).Once()
	suite.mockRepo.On("ListChildAccounts", ctx, accountID).Return(children, nil).Once()

	err := suite.service.DeleteAccount(ctx, accountID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInUse)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_Success() {
	ctx := context.Background()
	accountID := ids.New()
	account := &domain.Account{AccountID: accountID, Code: "6150", AccountType: domain.Expense, Balance: decimal.Zero}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockRepo.On("HasPostings", ctx, accountID).Return(false, nil).Once()
	suite.mockRepo.On("ListChildAccounts", ctx, accountID).Return([]domain.Account{}, nil).Once()
	suite.mockRepo.On("DeleteAccount", ctx, accountID).Return(nil).Once()

	err := suite.service.DeleteAccount(ctx, accountID, ids.New())

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetDefaultAccount_UnknownRole() {
	ctx := context.Background()

	_, err := suite.service.GetDefaultAccount(ctx, domain.DefaultAccountRole("VAT"), ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownDefaultRole)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindDefaultAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetDefaultAccount_GroupRefused() {
	ctx := context.Background()
	accountID := ids.New()
	group := &domain.Account{AccountID: accountID, Code: "1000", AccountType: domain.Asset, IsGroup: true}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(group, nil).Once()

	err := suite.service.SetDefaultAccount(ctx, domain.RoleAccountsReceivable, accountID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetDefaultAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestSetDefaultAccount_Success() {
	ctx := context.Background()
	accountID := ids.New()
	userID := ids.New()
	leaf := &domain.Account{AccountID: accountID, Code: "1300", AccountType: domain.Asset}

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(leaf, nil).Once()
	suite.mockRepo.On("SetDefaultAccount", ctx, domain.RoleAccountsReceivable, accountID, userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.SetDefaultAccount(ctx, domain.RoleAccountsReceivable, accountID, userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

// Run the test suite
func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
