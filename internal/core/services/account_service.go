package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultOpeningBalanceEquityCode is the equity account opening balances are posted against.
const DefaultOpeningBalanceEquityCode = "3-9000"

const openingBalanceEquityName = "Ekuitas Saldo Awal"

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo       portsrepo.AccountRepositoryFacade
	journalRepo       portsrepo.JournalWriter
	openingEquityCode string
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithOpeningBalancePosting enables opening balances, posted through journalRepo
// against the equity account with the given code.
func WithOpeningBalancePosting(journalRepo portsrepo.JournalWriter, equityCode string) AccountServiceOption {
	return func(s *accountService) {
		s.journalRepo = journalRepo
		if equityCode != "" {
			s.openingEquityCode = equityCode
		}
	}
}

// WithAccountBase sets metrics and clock.
func WithAccountBase(base BaseService) AccountServiceOption {
	return func(s *accountService) {
		s.BaseService = base
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:       repo,
		openingEquityCode: DefaultOpeningBalanceEquityCode,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}
	hasOpening := !req.OpeningBalance.IsZero()
	if hasOpening {
		if s.journalRepo == nil {
			return nil, fmt.Errorf("%w: opening balances are not enabled", apperrors.ErrValidation)
		}
		if code == s.openingEquityCode {
			return nil, fmt.Errorf("%w: the opening balance equity account cannot carry an opening balance", apperrors.ErrValidation)
		}
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        name,
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		}
		return nil, err
	}

	if hasOpening {
		if err := s.postOpeningBalance(ctx, &account, req.OpeningBalance, userID); err != nil {
			s.LogError(ctx, err, "Failed to post opening balance, removing account",
				slog.String("account_id", account.AccountID))
			if delErr := s.accountRepo.DeleteAccount(ctx, account.AccountID); delErr != nil {
				s.LogError(ctx, delErr, "Failed to remove account after opening balance failure",
					slog.String("account_id", account.AccountID))
			}
			return nil, err
		}
		saved, err := s.accountRepo.FindAccountByID(ctx, account.AccountID)
		if err != nil {
			return nil, err
		}
		account = *saved
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

// postOpeningBalance books amount on the account's normal side against opening balance equity.
func (s *accountService) postOpeningBalance(ctx context.Context, account *domain.Account, amount decimal.Decimal, userID string) error {
	equity, err := s.EnsureAccount(ctx, s.openingEquityCode, openingBalanceEquityName, domain.Equity, userID)
	if err != nil {
		return err
	}

	debit, credit := accounting.NormalBalance(account.AccountType, amount)
	now := s.Now()
	journalID := uuid.NewString()
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), JournalID: journalID, LineNo: 1, AccountID: account.AccountID, Debit: debit, Credit: credit, Notes: "Opening balance"},
		{LineID: uuid.NewString(), JournalID: journalID, LineNo: 2, AccountID: equity.AccountID, Debit: credit, Credit: debit, Notes: "Opening balance"},
	}
	changes, err := accounting.BalanceChanges(lines, map[string]domain.AccountType{
		account.AccountID: account.AccountType,
		equity.AccountID:  equity.AccountType,
	})
	if err != nil {
		return err
	}
	journal := domain.Journal{
		JournalID:   journalID,
		JournalDate: now,
		Description: "Opening balance: " + account.Name,
		Status:      domain.Posted,
		Amount:      amount.Abs(),
		AuditFields: domain.NewAuditFields(userID, now),
	}
	return s.journalRepo.SaveJournal(ctx, journal, lines, changes)
}

func (s *accountService) EnsureAccount(ctx context.Context, code, name string, accountType domain.AccountType, userID string) (*domain.Account, error) {
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err == nil {
		if existing.AccountType != accountType {
			return nil, fmt.Errorf("%w: account %s is %s, want %s", apperrors.ErrConflict, code, existing.AccountType, accountType)
		}
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        name,
		AccountType: accountType,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Created concurrently.
			return s.accountRepo.FindAccountByCode(ctx, code)
		}
		return nil, err
	}
	s.LogInfo(ctx, "Account ensured", slog.String("code", code), slog.String("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

func (s *accountService) ListAccounts(ctx context.Context, accountType *domain.AccountType) ([]domain.Account, error) {
	if accountType != nil && !accountType.Valid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *accountType)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, accountType)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		if name != account.Name {
			account.Name = name
			updated = true
		}
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil && *req.IsActive != account.IsActive {
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.Touch(userID, s.Now())
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrAccountInUse) {
			s.LogWarn(ctx, err, "Account deletion refused", slog.String("account_id", accountID))
		} else {
			s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("user_id", userID))
	return nil
}

func (s *accountService) CalculateAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}
