package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// LedgerRowResponse represents one movement in a general ledger response
type LedgerRowResponse struct {
	EntryID         string          `json:"entryID"`
	EntryNumber     string          `json:"entryNumber"`
	TransactionDate string          `json:"transactionDate"`
	Reference       string          `json:"reference"`
	Description     string          `json:"description"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// LedgerResponse represents the general ledger report response for one account
type LedgerResponse struct {
	AccountID      string              `json:"accountID"`
	FromDate       string              `json:"fromDate"`
	ToDate         string              `json:"toDate"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	Rows           []LedgerRowResponse `json:"rows"`
	ClosingBalance decimal.Decimal     `json:"closingBalance"`
}

// AccountMovementResponse represents one account's net movement in a period
type AccountMovementResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	NetMovement decimal.Decimal `json:"netMovement"`
}

// MovementsResponse represents the account movements report response
type MovementsResponse struct {
	FromDate  string                    `json:"fromDate"`
	ToDate    string                    `json:"toDate"`
	Movements []AccountMovementResponse `json:"movements"`
}

// DashboardResponse represents the dashboard summary response
type DashboardResponse struct {
	AsOf               string          `json:"asOf"`
	FiscalYearStart    string          `json:"fiscalYearStart"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	TotalLiabilities   decimal.Decimal `json:"totalLiabilities"`
	TotalEquity        decimal.Decimal `json:"totalEquity"`
	CurrentYearRevenue decimal.Decimal `json:"currentYearRevenue"`
	CurrentYearExpense decimal.Decimal `json:"currentYearExpense"`
	CurrentYearProfit  decimal.Decimal `json:"currentYearProfit"`
	EquityWithProfit   decimal.Decimal `json:"equityWithProfit"`
	OutOfBalance       decimal.Decimal `json:"outOfBalance"`
	Balanced           bool            `json:"balanced"`
}

// ReconciliationRowResponse represents one drifted account in a reconciliation response
type ReconciliationRowResponse struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	CachedBalance   decimal.Decimal `json:"cachedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Difference      decimal.Decimal `json:"difference"`
}

// ReconciliationResponse represents the balance reconciliation response
type ReconciliationResponse struct {
	CheckedAt  string                      `json:"checkedAt"`
	DriftCount int                         `json:"driftCount"`
	Drifted    []ReconciliationRowResponse `json:"drifted"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:     tb.AsOf.Format("2006-01-02"),
		Rows:     make([]TrialBalanceRowResponse, len(tb.Rows)),
		Balanced: tb.Balanced,
	}
	for i, row := range tb.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			Code:        row.Code,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	response.Totals.Debit = tb.TotalDebit
	response.Totals.Credit = tb.TotalCredit
	return response
}

// ToLedgerResponse converts an opening balance and ledger rows to a DTO response
func ToLedgerResponse(accountID string, from, to time.Time, opening decimal.Decimal, rows []domain.LedgerRow) LedgerResponse {
	response := LedgerResponse{
		AccountID:      accountID,
		FromDate:       from.Format("2006-01-02"),
		ToDate:         to.Format("2006-01-02"),
		OpeningBalance: opening,
		Rows:           make([]LedgerRowResponse, len(rows)),
		ClosingBalance: opening,
	}
	for i, row := range rows {
		response.Rows[i] = LedgerRowResponse{
			EntryID:         row.EntryID,
			EntryNumber:     row.EntryNumber,
			TransactionDate: row.TransactionDate.Format("2006-01-02"),
			Reference:       row.Reference,
			Description:     row.Description,
			Debit:           row.Debit,
			Credit:          row.Credit,
			RunningBalance:  row.RunningBalance,
		}
	}
	if len(rows) > 0 {
		response.ClosingBalance = rows[len(rows)-1].RunningBalance
	}
	return response
}

// ToMovementsResponse converts domain account movements to a DTO response
func ToMovementsResponse(from, to time.Time, movements []domain.AccountMovement) MovementsResponse {
	response := MovementsResponse{
		FromDate:  from.Format("2006-01-02"),
		ToDate:    to.Format("2006-01-02"),
		Movements: make([]AccountMovementResponse, len(movements)),
	}
	for i, m := range movements {
		response.Movements[i] = AccountMovementResponse{
			AccountID:   m.AccountID,
			Code:        m.Code,
			Name:        m.Name,
			AccountType: string(m.AccountType),
			NetMovement: m.NetMovement,
		}
	}
	return response
}

// ToDashboardResponse converts a domain dashboard summary to a DTO response
func ToDashboardResponse(s *domain.DashboardSummary) DashboardResponse {
	return DashboardResponse{
		AsOf:               s.AsOf.Format("2006-01-02"),
		FiscalYearStart:    s.FiscalYearStart.Format("2006-01-02"),
		TotalAssets:        s.TotalAssets,
		TotalLiabilities:   s.TotalLiabilities,
		TotalEquity:        s.TotalEquity,
		CurrentYearRevenue: s.CurrentYearRevenue,
		CurrentYearExpense: s.CurrentYearExpense,
		CurrentYearProfit:  s.CurrentYearProfit,
		EquityWithProfit:   s.EquityWithProfit,
		OutOfBalance:       s.OutOfBalance,
		Balanced:           s.Balanced,
	}
}

// ToReconciliationResponse converts drifted reconciliation rows to a DTO response
func ToReconciliationResponse(checkedAt time.Time, rows []domain.ReconciliationRow) ReconciliationResponse {
	response := ReconciliationResponse{
		CheckedAt:  checkedAt.Format(time.RFC3339),
		DriftCount: len(rows),
		Drifted:    make([]ReconciliationRowResponse, len(rows)),
	}
	for i, row := range rows {
		response.Drifted[i] = ReconciliationRowResponse{
			AccountID:       row.AccountID,
			Code:            row.Code,
			Name:            row.Name,
			AccountType:     string(row.AccountType),
			CachedBalance:   row.CachedBalance,
			ComputedBalance: row.ComputedBalance,
			Difference:      row.Difference,
		}
	}
	return response
}
