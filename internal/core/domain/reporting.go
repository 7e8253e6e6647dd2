package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single account row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is the full report: per-account cumulative debit/credit totals
// as of a date, plus grand totals the caller compares for the balance check.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"` // |totalDebit - totalCredit| within tolerance; diagnostic only
}

// LedgerRow is one posted line-level movement in a general ledger report,
// carrying a running balance computed as a prefix sum within the result set.
type LedgerRow struct {
	EntryID         string          `json:"entryID"`
	EntryNumber     string          `json:"entryNumber"`
	TransactionDate time.Time       `json:"transactionDate"`
	Reference       string          `json:"reference"`
	Description     string          `json:"description"`
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	AccountName     string          `json:"accountName"`
	AccountType     AccountType     `json:"accountType"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// AccountMovement is the net, natural-sign movement of one account within a
// date range. REVENUE/EXPENSE movements build income statement views.
type AccountMovement struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NetMovement decimal.Decimal `json:"netMovement"`
}

// DashboardSummary composes cumulative balances with current-fiscal-year
// movement into a balance sheet view. OutOfBalance is displayed as a health
// check, never corrected or enforced.
type DashboardSummary struct {
	AsOf               time.Time       `json:"asOf"`
	FiscalYearStart    time.Time       `json:"fiscalYearStart"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	TotalLiabilities   decimal.Decimal `json:"totalLiabilities"`
	TotalEquity        decimal.Decimal `json:"totalEquity"`
	CurrentYearRevenue decimal.Decimal `json:"currentYearRevenue"`
	CurrentYearExpense decimal.Decimal `json:"currentYearExpense"`
	CurrentYearProfit  decimal.Decimal `json:"currentYearProfit"`
	EquityWithProfit   decimal.Decimal `json:"equityWithProfit"` // Equity with unclosed net profit folded in
	OutOfBalance       decimal.Decimal `json:"outOfBalance"`     // Assets - (Liabilities + EquityWithProfit)
	Balanced           bool            `json:"balanced"`
}

// ReconciliationRow reports one account whose incrementally maintained balance
// no longer matches the balance recomputed from posted lines.
type ReconciliationRow struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	CachedBalance   decimal.Decimal `json:"cachedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Difference      decimal.Decimal `json:"difference"`
}
