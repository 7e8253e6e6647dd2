package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// DefaultAccountRole names an account the document poster must be able to
// resolve without user input (accounts receivable/payable, tax liability).
type DefaultAccountRole string

const (
	RoleAccountsReceivable DefaultAccountRole = "AR"
	RoleAccountsPayable    DefaultAccountRole = "AP"
	RoleTaxLiability       DefaultAccountRole = "TAX"
)

// Account represents a node in the chart of accounts. Group accounts structure
// the chart and hold no direct postings; only leaf accounts are posted to.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (ULID)
	Code            string          `json:"code"`            // Unique, sortable account code (e.g. "1300")
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID string          `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing)
	IsGroup         bool            `json:"isGroup"`         // Group accounts cannot be posted to
	IsSystem        bool            `json:"isSystem"`        // System accounts cannot be deleted
	IsLocked        bool            `json:"isLocked"`        // Set when reconciliation detects balance drift
	Balance         decimal.Decimal `json:"balance"`         // Incrementally maintained, natural-sign balance
	AuditFields
}
