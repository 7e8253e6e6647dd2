package services

import (
	"context"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	"github.com/openbooks/openbooks_backend/internal/dto"
)

// AccountReaderSvc defines read operations for chart of accounts data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its user-facing code.
	GetAccountByCode(ctx context.Context, code string, userID string) (*domain.Account, error)

	// ListAccounts retrieves all accounts ordered by code.
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// GetDefaultAccount retrieves the account configured for a posting role.
	GetDefaultAccount(ctx context.Context, role domain.DefaultAccountRole, userID string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for chart of accounts data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeleteAccount removes an account that has no postings, children or
	// system designation.
	DeleteAccount(ctx context.Context, accountID string, userID string) error

	// SetDefaultAccount assigns an account to a posting role.
	SetDefaultAccount(ctx context.Context, role domain.DefaultAccountRole, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
