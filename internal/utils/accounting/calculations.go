package accounting

import (
	"fmt"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the maximum debit/credit discrepancy accepted on a posted
// entry, in currency units.
var Tolerance = decimal.RequireFromString("0.01")

// IsDebitNormal reports whether an account type naturally increases with debits.
func IsDebitNormal(accountType domain.AccountType) bool {
	return accountType == domain.Asset || accountType == domain.Expense
}

// LineDelta computes the natural-sign balance effect of one line on its account.
// Debit-normal accounts (ASSET, EXPENSE) grow with debits; credit-normal
// accounts (LIABILITY, EQUITY, REVENUE) grow with credits.
func LineDelta(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	delta := line.Debit.Sub(line.Credit)
	switch accountType {
	case domain.Asset, domain.Expense:
		return delta, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return delta.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
}

// BalanceChanges aggregates per-account natural-sign deltas for a set of lines.
// Unposting reuses the exact decimals recorded on the lines (negated by the
// caller), so apply followed by reverse is a strict identity.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", line.AccountID)
		}
		delta, err := LineDelta(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(delta)
	}
	return changes, nil
}

// Negate returns the map of balance changes with every delta negated.
func Negate(changes map[string]decimal.Decimal) map[string]decimal.Decimal {
	negated := make(map[string]decimal.Decimal, len(changes))
	for accountID, delta := range changes {
		negated[accountID] = delta.Neg()
	}
	return negated
}

// EntryTotals sums the debit and credit sides of a line set.
func EntryTotals(lines []domain.JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// WithinTolerance reports whether two amounts agree to within Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// ValidateLineShape checks the per-line invariant: non-negative sides with
// exactly one of debit/credit non-zero. Draft edits may hold zero/zero lines,
// controlled by allowEmpty.
func ValidateLineShape(line domain.JournalLine, allowEmpty bool) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("line amounts must be non-negative for account %s", line.AccountID)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet && creditSet {
		return fmt.Errorf("line for account %s cannot be both a debit and a credit", line.AccountID)
	}
	if !debitSet && !creditSet && !allowEmpty {
		return fmt.Errorf("line for account %s must be either a debit or a credit", line.AccountID)
	}
	return nil
}
