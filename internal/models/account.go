package models

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

// Account is the storage representation of a chart-of-accounts node.
// Note: ParentAccountID uses string for the nullable self-referential FK;
// the repository maps it through sql.NullString.
type Account struct {
	AccountID       string          `db:"account_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	ParentAccountID string          `db:"parent_account_id"` // Nullable
	IsGroup         bool            `db:"is_group"`
	IsSystem        bool            `db:"is_system"`
	IsLocked        bool            `db:"is_locked"`
	Balance         decimal.Decimal `db:"balance"`
	AuditFields
}
