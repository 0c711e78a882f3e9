package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, accountType *domain.AccountType) ([]domain.Account, error) {
	args := m.Called(ctx, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// MockJournalWriter is a mock type for the JournalWriter interface
type MockJournalWriter struct {
	mock.Mock
}

func (m *MockJournalWriter) SaveJournal(ctx context.Context, journal domain.Journal, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, lines, balanceChanges)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockAccountRepository
	mockJournal *MockJournalWriter
	service     portssvc.AccountSvcFacade
	now         time.Time
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockJournal = new(MockJournalWriter)
	suite.now = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	suite.service = services.NewAccountService(
		suite.mockRepo,
		services.WithAccountBase(services.BaseService{Clock: func() time.Time { return suite.now }}),
		services.WithOpeningBalancePosting(suite.mockJournal, "3-9000"),
	)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:        "1-1400",
		Name:        "Bank Mandiri",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(createdAccount)
	suite.NotEmpty(createdAccount.AccountID)
	suite.Equal(req.Code, createdAccount.Code)
	suite.Equal(req.Name, createdAccount.Name)
	suite.Equal(req.AccountType, createdAccount.AccountType)
	suite.True(createdAccount.IsActive)
	suite.True(createdAccount.Balance.IsZero())
	suite.Equal(creatorUserID, createdAccount.CreatedBy)
	suite.Equal(suite.now, createdAccount.CreatedAt)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockJournal.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SaveError() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1-1400", Name: "Bank Mandiri", AccountType: domain.Asset}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(assert.AnError).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, req, "user")

	suite.Require().Error(err)
	suite.Nil(createdAccount)
	suite.ErrorIs(err, assert.AnError)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1-1100", Name: "Kas", AccountType: domain.Asset}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(fmt.Errorf("%w 1-1100", apperrors.ErrDuplicateAccountCode)).Once()

	_, err := suite.service.CreateAccount(ctx, req, "user")
	suite.ErrorIs(err, apperrors.ErrDuplicateAccountCode)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Validation() {
	ctx := context.Background()
	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: " ", Name: "X", AccountType: domain.Asset}, "user")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(ctx, dto.CreateAccountRequest{Code: "9-9", Name: "X", AccountType: "REVENUE"}, "user")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code: "3-9000", Name: "X", AccountType: domain.Equity, OpeningBalance: d("1"),
	}, "user")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalancePostsAgainstEquity() {
	ctx := context.Background()
	equity := &domain.Account{AccountID: "equity-id", Code: "3-9000", AccountType: domain.Equity, IsActive: true}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, "3-9000").Return(equity, nil).Once()
	suite.mockJournal.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"),
		mock.MatchedBy(func(lines []domain.JournalLine) bool {
			return len(lines) == 2 &&
				lines[0].Debit.Equal(d("750000")) && lines[0].Credit.IsZero() &&
				lines[1].AccountID == "equity-id" && lines[1].Credit.Equal(d("750000"))
		}),
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes["equity-id"].Equal(d("750000"))
		}),
	).Return(nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, mock.AnythingOfType("string")).
		Return(&domain.Account{AccountID: "new", Code: "1-1400", AccountType: domain.Asset, Balance: d("750000")}, nil).Once()

	acc, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code: "1-1400", Name: "Bank Mandiri", AccountType: domain.Asset, OpeningBalance: d("750000"),
	}, "user")

	suite.Require().NoError(err)
	suite.True(acc.Balance.Equal(d("750000")))
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceFailureRemovesAccount() {
	ctx := context.Background()
	equity := &domain.Account{AccountID: "equity-id", Code: "3-9000", AccountType: domain.Equity, IsActive: true}

	var savedID string
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { savedID = args.Get(1).(domain.Account).AccountID }).
		Return(nil).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, "3-9000").Return(equity, nil).Once()
	suite.mockJournal.On("SaveJournal", ctx, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()
	suite.mockRepo.On("DeleteAccount", ctx, mock.AnythingOfType("string")).Return(nil).Once()

	acc, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code: "2-1400", Name: "Utang Bank", AccountType: domain.Liability, OpeningBalance: d("100"),
	}, "user")

	suite.Nil(acc)
	suite.ErrorIs(err, assert.AnError)
	suite.mockRepo.AssertCalled(suite.T(), "DeleteAccount", ctx, savedID)
}

func (suite *AccountServiceTestSuite) TestEnsureAccount() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "kas", Code: "1-1100", AccountType: domain.Asset}

	suite.Run("existing account is returned", func() {
		suite.mockRepo.On("FindAccountByCode", ctx, "1-1100").Return(existing, nil).Once()
		acc, err := suite.service.EnsureAccount(ctx, "1-1100", "Kas", domain.Asset, "seed")
		suite.Require().NoError(err)
		suite.Equal("kas", acc.AccountID)
	})

	suite.Run("type mismatch conflicts", func() {
		suite.mockRepo.On("FindAccountByCode", ctx, "1-1100").Return(existing, nil).Once()
		_, err := suite.service.EnsureAccount(ctx, "1-1100", "Kas", domain.Income, "seed")
		suite.ErrorIs(err, apperrors.ErrConflict)
	})

	suite.Run("missing account is created", func() {
		suite.mockRepo.On("FindAccountByCode", ctx, "4-3000").Return(nil, apperrors.ErrNotFound).Once()
		suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
			return a.Code == "4-3000" && a.AccountType == domain.Income && a.IsActive
		})).Return(nil).Once()
		acc, err := suite.service.EnsureAccount(ctx, "4-3000", "Pendapatan Buku", domain.Income, "seed")
		suite.Require().NoError(err)
		suite.Equal("seed", acc.CreatedBy)
	})
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "nope").Return(nil, apperrors.ErrNotFound).Once()

	acc, err := suite.service.GetAccountByID(ctx, "nope")
	suite.Nil(acc)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount() {
	ctx := context.Background()
	acc := &domain.Account{AccountID: "a1", Code: "5-1000", Name: "Gaji", AccountType: domain.Expense, IsActive: true}
	newName := "Gaji Guru"
	inactive := false

	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(acc, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == newName && !a.IsActive && a.LastUpdatedBy == "editor"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "a1", dto.UpdateAccountRequest{Name: &newName, IsActive: &inactive}, "editor")
	suite.Require().NoError(err)
	suite.Equal(newName, updated.Name)
	suite.False(updated.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_EmptyName() {
	ctx := context.Background()
	empty := "  "
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(&domain.Account{AccountID: "a1", Name: "Gaji"}, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, "a1", dto.UpdateAccountRequest{Name: &empty}, "editor")
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_InUse() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(&domain.Account{AccountID: "a1"}, nil).Once()
	suite.mockRepo.On("DeleteAccount", ctx, "a1").Return(apperrors.ErrAccountInUse).Once()

	err := suite.service.DeleteAccount(ctx, "a1", "user")
	suite.ErrorIs(err, apperrors.ErrAccountInUse)
}

func (suite *AccountServiceTestSuite) TestCalculateAccountBalance() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(&domain.Account{AccountID: "a1", Balance: d("42.50")}, nil).Once()

	bal, err := suite.service.CalculateAccountBalance(ctx, "a1")
	suite.Require().NoError(err)
	suite.True(bal.Equal(d("42.50")))
}

func TestOpeningBalance_DeleteAfterPostingIsRefused(t *testing.T) {
	h := newHarness(t, false)
	acc, err := h.svc.Account.CreateAccount(h.ctx, dto.CreateAccountRequest{
		Code: "1-1400", Name: "Bank Mandiri", AccountType: domain.Asset, OpeningBalance: d("2000000"),
	}, "tester")
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, acc.Balance.Equal(d("2000000")))
	assert.True(t, h.balance("3-9000").Equal(d("2000000")))
	assert.ErrorIs(t, h.svc.Account.DeleteAccount(h.ctx, acc.AccountID, "tester"), apperrors.ErrAccountInUse)
}
