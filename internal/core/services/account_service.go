package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/dto"
	"github.com/openbooks/openbooks_backend/internal/ids"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateCode      = errors.New("account code already in use")
	ErrInvalidHierarchy   = errors.New("invalid account hierarchy")
	ErrSystemAccount      = errors.New("system accounts cannot be deleted")
	ErrAccountInUse       = errors.New("account has postings or child accounts")
	ErrUnknownDefaultRole = errors.New("unknown posting default role")
)

// knownDefaultRoles is the closed set of posting roles the document poster
// resolves through configuration.
var knownDefaultRoles = map[domain.DefaultAccountRole]bool{
	domain.RoleAccountsReceivable: true,
	domain.RoleAccountsPayable:    true,
	domain.RoleTaxLiability:       true,
}

// accountService manages the chart of accounts and the posting defaults.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// validateParent checks that an account may be attached under the given parent:
// the parent must exist, be a group, share the account type and not create a
// cycle.
func (s *accountService) validateParent(ctx context.Context, accountID string, parentID string, accountType domain.AccountType) error {
	parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: parent account %s does not exist", ErrInvalidHierarchy, parentID)
		}
		return fmt.Errorf("failed to fetch parent account %s: %w", parentID, err)
	}
	if !parent.IsGroup {
		return fmt.Errorf("%w: parent account %s is not a group account", ErrInvalidHierarchy, parentID)
	}
	if parent.AccountType != accountType {
		return fmt.Errorf("%w: parent account %s has type %s, child has type %s", ErrInvalidHierarchy, parentID, parent.AccountType, accountType)
	}

	// Walk the parent chain to reject cycles. The chart is shallow in practice,
	// so a linear walk is fine.
	current := parent
	for {
		if current.AccountID == accountID {
			return fmt.Errorf("%w: account %s cannot be its own ancestor", ErrInvalidHierarchy, accountID)
		}
		if current.ParentAccountID == "" {
			return nil
		}
		current, err = s.accountRepo.FindAccountByID(ctx, current.ParentAccountID)
		if err != nil {
			return fmt.Errorf("failed to walk account hierarchy: %w", err)
		}
	}
}

// CreateAccount persists a new account after validating code uniqueness and
// hierarchy placement.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("%w: code %s", ErrDuplicateCode, req.Code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   ids.New(),
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		IsGroup:     req.IsGroup,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		if err := s.validateParent(ctx, account.AccountID, *req.ParentAccountID, req.AccountType); err != nil {
			return nil, err
		}
		account.ParentAccountID = *req.ParentAccountID
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race on the unique code index.
			return nil, fmt.Errorf("%w: code %s", ErrDuplicateCode, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its user-facing code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, fmt.Errorf("failed to find account with code %s: %w", code, err)
	}
	return account, nil
}

// ListAccounts retrieves all accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's name and hierarchy placement. Type,
// system flag and balance are immutable through this path.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.ParentAccountID != nil {
		if *req.ParentAccountID == "" {
			account.ParentAccountID = ""
		} else {
			if err := s.validateParent(ctx, accountID, *req.ParentAccountID, account.AccountType); err != nil {
				return nil, err
			}
			account.ParentAccountID = *req.ParentAccountID
		}
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeleteAccount removes an account permanently. System accounts, accounts with
// postings and group accounts with children are refused.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsSystem {
		return fmt.Errorf("%w: account %s", ErrSystemAccount, account.Code)
	}

	hasPostings, err := s.accountRepo.HasPostings(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check postings for account %s: %w", accountID, err)
	}
	if hasPostings {
		return fmt.Errorf("%w: account %s has journal lines", ErrAccountInUse, account.Code)
	}

	children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list children of account %s: %w", accountID, err)
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: account %s has %d child accounts", ErrAccountInUse, account.Code, len(children))
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("code", account.Code))
	return nil
}

// GetDefaultAccount retrieves the account configured for a posting role.
func (s *accountService) GetDefaultAccount(ctx context.Context, role domain.DefaultAccountRole, userID string) (*domain.Account, error) {
	if !knownDefaultRoles[role] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDefaultRole, role)
	}
	account, err := s.accountRepo.FindDefaultAccount(ctx, role)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find default account", slog.String("role", string(role)))
		}
		return nil, fmt.Errorf("failed to find default account for role %s: %w", role, err)
	}
	return account, nil
}

// SetDefaultAccount assigns a leaf account to a posting role.
func (s *accountService) SetDefaultAccount(ctx context.Context, role domain.DefaultAccountRole, accountID string, userID string) error {
	if !knownDefaultRoles[role] {
		return fmt.Errorf("%w: %s", ErrUnknownDefaultRole, role)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsGroup {
		return fmt.Errorf("%w: group account %s cannot be a posting default", ErrInvalidHierarchy, account.Code)
	}

	if err := s.accountRepo.SetDefaultAccount(ctx, role, accountID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to set default account", slog.String("role", string(role)), slog.String("account_id", accountID))
		return fmt.Errorf("failed to set default account for role %s: %w", role, err)
	}

	s.LogInfo(ctx, "Posting default updated", slog.String("role", string(role)), slog.String("account_id", accountID))
	return nil
}
