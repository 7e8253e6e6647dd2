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

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo  *MockJournalRepository
	mockAccountRepo  *MockAccountRepository
	mockDocumentRepo *MockDocumentRepository
	service          portssvc.JournalSvcFacade

	bankID  string
	salesID string
	taxID   string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountRepo, suite.mockDocumentRepo)

	suite.bankID = ids.New()
	suite.salesID = ids.New()
	suite.taxID = ids.New()
}

// expectFreestandingEntry stubs the ownership lookup so the entry counts as a
// manual one, not derived from a document.
func (suite *JournalServiceTestSuite) expectFreestandingEntry(ctx context.Context, entryID string) {
	suite.mockDocumentRepo.On("FindDocumentByEntryID", ctx, entryID).Return(nil, apperrors.ErrNotFound).Once()
}

// postableAccounts returns a bank/sales/tax account map the way the account
// repository serves it.
func (suite *JournalServiceTestSuite) postableAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		suite.bankID:  {AccountID: suite.bankID, Code: "1100", Name: "Bank", AccountType: domain.Asset},
		suite.salesID: {AccountID: suite.salesID, Code: "4000", Name: "Sales", AccountType: domain.Revenue},
		suite.taxID:   {AccountID: suite.taxID, Code: "2200", Name: "VAT Payable", AccountType: domain.Liability},
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestCreateEntry_Success() {
	ctx := context.Background()
	userID := ids.New()
	req := dto.CreateJournalEntryRequest{
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Reference:       "INV-000001",
		Description:     "June sale",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.bankID, Debit: decimal.RequireFromString("118")},
			{AccountID: suite.salesID, Credit: decimal.RequireFromString("100")},
			{AccountID: suite.taxID, Credit: decimal.RequireFromString("18")},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("NextEntryNumber", ctx).Return("JE-000001", nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("JE-000001", entry.EntryNumber)
	suite.Equal(domain.Draft, entry.Status)
	suite.Len(entry.Lines, 3)
	suite.Equal(userID, entry.CreatedBy)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateEntry_PostImmediately() {
	ctx := context.Background()
	userID := ids.New()
	req := dto.CreateJournalEntryRequest{
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PostImmediately: true,
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.bankID, Debit: decimal.RequireFromString("100")},
			{AccountID: suite.salesID, Credit: decimal.RequireFromString("100")},
		},
	}

	var saved domain.JournalEntry
	var applied map[string]decimal.Decimal
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("NextEntryNumber", ctx).Return("JE-000002", nil).Once()
	suite.mockJournalRepo.On("SavePostedEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.Anything, userID).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.JournalEntry)
			applied = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, entry.Status)
	// Entry and deltas travel together in one repository call, so there is no
	// window where a draft exists without its balances applied.
	suite.Equal(domain.Posted, saved.Status)
	suite.True(applied[suite.bankID].Equal(decimal.RequireFromString("100")))
	suite.True(applied[suite.salesID].Equal(decimal.RequireFromString("100")))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateEntry_PostImmediatelyUnbalancedRejected() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		TransactionDate: time.Now().UTC(),
		PostImmediately: true,
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.bankID, Debit: decimal.RequireFromString("100")},
			{AccountID: suite.salesID, Credit: decimal.RequireFromString("80")},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, ids.New())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
	// Nothing is written when the immediate post would fail.
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SavePostedEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_LineWithBothSidesRejected() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		TransactionDate: time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.bankID, Debit: decimal.RequireFromString("10"), Credit: decimal.RequireFromString("10")},
			{AccountID: suite.salesID, Credit: decimal.RequireFromString("10")},
		},
	}

	entry, err := suite.service.CreateEntry(ctx, req, ids.New())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrLineNotExclusive)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_GroupAccountRejected() {
	ctx := context.Background()
	groupID := ids.New()
	accounts := map[string]domain.Account{
		groupID:       {AccountID: groupID, Code: "1000", Name: "Current Assets", AccountType: domain.Asset, IsGroup: true},
		suite.salesID: {AccountID: suite.salesID, Code: "4000", Name: "Sales", AccountType: domain.Revenue},
	}
	req := dto.CreateJournalEntryRequest{
		TransactionDate: time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: groupID, Debit: decimal.RequireFromString("100")},
			{AccountID: suite.salesID, Credit: decimal.RequireFromString("100")},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	_, err := suite.service.CreateEntry(ctx, req, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotLeaf)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	userID := ids.New()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000007", Status: domain.Draft}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("118"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.taxID, Debit: decimal.Zero, Credit: decimal.RequireFromString("18")},
	}

	var applied map[string]decimal.Decimal
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Posted, mock.Anything, userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			applied = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	posted, err := suite.service.PostEntry(ctx, entryID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)

	// Every balance moves by its natural sign: the asset up by the debit, the
	// credit-normal accounts up by their credits.
	suite.Require().NotNil(applied)
	suite.True(applied[suite.bankID].Equal(decimal.RequireFromString("118")))
	suite.True(applied[suite.salesID].Equal(decimal.RequireFromString("100")))
	suite.True(applied[suite.taxID].Equal(decimal.RequireFromString("18")))
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnbalancedRejected() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000008", Status: domain.Draft}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("120"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateEntryStatusWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_WithinToleranceAccepted() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000009", Status: domain.Draft}
	// One cent apart, which is inside the accounting tolerance.
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("100.01"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100.00")},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Posted, mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_AlreadyPosted() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000010", Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyPosted)
}

func (suite *JournalServiceTestSuite) TestPostEntry_LockedAccountRejected() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000011", Status: domain.Draft}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("100"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
	}
	accounts := suite.postableAccounts()
	locked := accounts[suite.bankID]
	locked.IsLocked = true
	accounts[suite.bankID] = locked

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountLocked)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateEntryStatusWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestUnpostEntry_ReversesBalances() {
	ctx := context.Background()
	userID := ids.New()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000012", Status: domain.Posted}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("118"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.taxID, Debit: decimal.Zero, Credit: decimal.RequireFromString("18")},
	}

	var applied map[string]decimal.Decimal
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Draft, mock.Anything, userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			applied = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	unposted, err := suite.service.UnpostEntry(ctx, entryID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Draft, unposted.Status)

	// The reversal is the exact negation of the posting deltas.
	suite.Require().NotNil(applied)
	suite.True(applied[suite.bankID].Equal(decimal.RequireFromString("-118")))
	suite.True(applied[suite.salesID].Equal(decimal.RequireFromString("-100")))
	suite.True(applied[suite.taxID].Equal(decimal.RequireFromString("-18")))
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestUnpostEntry_LockedAccountAllowed() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000013", Status: domain.Posted}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("50"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("50")},
	}
	accounts := suite.postableAccounts()
	locked := accounts[suite.bankID]
	locked.IsLocked = true
	accounts[suite.bankID] = locked

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Draft, mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.UnpostEntry(ctx, entryID, ids.New())

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestUnpostEntry_NotPosted() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000014", Status: domain.Draft}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	_, err := suite.service.UnpostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotPosted)
}

func (suite *JournalServiceTestSuite) TestDeleteEntry_PostedRefused() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000015", Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	err := suite.service.DeleteEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCannotDeletePosted)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestArchiveEntry_PostedRefused() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000016", Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	err := suite.service.ArchiveEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyPosted)
}

func (suite *JournalServiceTestSuite) TestArchiveEntry_Success() {
	ctx := context.Background()
	userID := ids.New()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000017", Status: domain.Draft}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Archived, mock.Anything, userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			// Archiving touches no balances.
			suite.Empty(args.Get(3).(map[string]decimal.Decimal))
		}).Return(nil).Once()

	err := suite.service.ArchiveEntry(ctx, entryID, userID)

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_ArchivedRejected() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000018", Status: domain.Archived}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotDraft)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateEntryStatusWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestUnpostEntry_DocumentOwnedRefused() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000019", Status: domain.Posted}
	owner := &domain.Document{DocumentID: ids.New(), DocumentNumber: "INV-000042", Status: domain.DocumentPosted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByEntryID", ctx, entryID).Return(owner, nil).Once()

	_, err := suite.service.UnpostEntry(ctx, entryID, ids.New())

	// Reversing a derived entry here would leave the document POSTED while the
	// balances are already backed out; unposting the document afterwards would
	// then reverse them a second time.
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryOwnedByDocument)
	suite.Contains(err.Error(), "INV-000042")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateEntryStatusWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_DocumentOwnedRefused() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000020", Status: domain.Draft}
	owner := &domain.Document{DocumentID: ids.New(), DocumentNumber: "PAY-000003", Status: domain.DocumentDraft}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByEntryID", ctx, entryID).Return(owner, nil).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryOwnedByDocument)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateEntryStatusWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestDeleteEntry_DocumentOwnedRefused() {
	ctx := context.Background()
	entryID := ids.New()
	// A draft entry left behind by a document unpost still belongs to the
	// document; deleting it here would dangle the document's entry FK.
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000021", Status: domain.Draft}
	owner := &domain.Document{DocumentID: ids.New(), DocumentNumber: "RCT-000007", Status: domain.DocumentDraft}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByEntryID", ctx, entryID).Return(owner, nil).Once()

	err := suite.service.DeleteEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryOwnedByDocument)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_LostStatusRaceSurfacesConflict() {
	ctx := context.Background()
	entryID := ids.New()
	entry := &domain.JournalEntry{EntryID: entryID, EntryNumber: "JE-000022", Status: domain.Draft}
	lines := []domain.JournalLine{
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.bankID, Debit: decimal.RequireFromString("100"), Credit: decimal.Zero},
		{LineID: ids.New(), EntryID: entryID, AccountID: suite.salesID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100")},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.expectFreestandingEntry(ctx, entryID)
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.postableAccounts(), nil).Once()
	// A concurrent post won the guarded status update, so the repository
	// reports a state conflict instead of applying the deltas again.
	raceErr := apperrors.NewAppError(409, "entry "+entryID+" is not in DRAFT status", apperrors.ErrConflict)
	suite.mockJournalRepo.On("UpdateEntryStatusWithBalances", ctx, entryID, domain.Posted, mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(raceErr).Once()

	_, err := suite.service.PostEntry(ctx, entryID, ids.New())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// Run the test suite
func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
