package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/openbooks_backend/internal/core/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsDebitNormal(t *testing.T) {
	assert.True(t, IsDebitNormal(domain.Asset))
	assert.True(t, IsDebitNormal(domain.Expense))
	assert.False(t, IsDebitNormal(domain.Liability))
	assert.False(t, IsDebitNormal(domain.Equity))
	assert.False(t, IsDebitNormal(domain.Revenue))
}

func TestLineDelta(t *testing.T) {
	debitLine := domain.JournalLine{AccountID: "acc1", Debit: d("100"), Credit: decimal.Zero}
	creditLine := domain.JournalLine{AccountID: "acc2", Debit: decimal.Zero, Credit: d("100")}

	// Debit-normal accounts grow with debits
	delta, err := LineDelta(debitLine, domain.Asset)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("100")))

	delta, err = LineDelta(creditLine, domain.Asset)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("-100")))

	// Credit-normal accounts grow with credits
	delta, err = LineDelta(creditLine, domain.Revenue)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("100")))

	delta, err = LineDelta(debitLine, domain.Liability)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("-100")))

	// Unknown type is rejected
	_, err = LineDelta(debitLine, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestBalanceChanges(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "bank", Debit: d("118"), Credit: decimal.Zero},
		{AccountID: "sales", Debit: decimal.Zero, Credit: d("100")},
		{AccountID: "tax", Debit: decimal.Zero, Credit: d("18")},
	}
	accountTypes := map[string]domain.AccountType{
		"bank":  domain.Asset,
		"sales": domain.Revenue,
		"tax":   domain.Liability,
	}

	changes, err := BalanceChanges(lines, accountTypes)
	require.NoError(t, err)
	assert.True(t, changes["bank"].Equal(d("118")))
	assert.True(t, changes["sales"].Equal(d("100")))
	assert.True(t, changes["tax"].Equal(d("18")))
}

func TestBalanceChangesAggregatesRepeatedAccounts(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "bank", Debit: d("50"), Credit: decimal.Zero},
		{AccountID: "bank", Debit: d("25"), Credit: decimal.Zero},
		{AccountID: "bank", Debit: decimal.Zero, Credit: d("10")},
	}
	changes, err := BalanceChanges(lines, map[string]domain.AccountType{"bank": domain.Asset})
	require.NoError(t, err)
	assert.True(t, changes["bank"].Equal(d("65")))
}

func TestBalanceChangesMissingType(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "mystery", Debit: d("10"), Credit: decimal.Zero},
	}
	_, err := BalanceChanges(lines, map[string]domain.AccountType{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestNegateIsExactReversal(t *testing.T) {
	changes := map[string]decimal.Decimal{
		"a": d("123.4567"),
		"b": d("-0.0001"),
		"c": decimal.Zero,
	}
	negated := Negate(changes)
	for id, delta := range changes {
		assert.True(t, delta.Add(negated[id]).IsZero(), "apply then reverse should cancel for %s", id)
	}
}

func TestEntryTotals(t *testing.T) {
	lines := []domain.JournalLine{
		{Debit: d("100"), Credit: decimal.Zero},
		{Debit: d("18"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: d("118")},
	}
	debit, credit := EntryTotals(lines)
	assert.True(t, debit.Equal(d("118")))
	assert.True(t, credit.Equal(d("118")))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(d("100"), d("100")))
	assert.True(t, WithinTolerance(d("100"), d("100.01")))
	assert.True(t, WithinTolerance(d("100.01"), d("100")))
	assert.False(t, WithinTolerance(d("100"), d("100.011")))
	assert.False(t, WithinTolerance(d("100"), d("99.98")))
}

func TestValidateLineShape(t *testing.T) {
	// Valid debit line
	err := ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: d("10"), Credit: decimal.Zero}, false)
	assert.NoError(t, err)

	// Valid credit line
	err = ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: decimal.Zero, Credit: d("10")}, false)
	assert.NoError(t, err)

	// Both sides set
	err = ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: d("10"), Credit: d("10")}, false)
	assert.Error(t, err)

	// Negative amount
	err = ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: d("-10"), Credit: decimal.Zero}, false)
	assert.Error(t, err)

	// Empty line rejected when empties are not allowed
	err = ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: decimal.Zero, Credit: decimal.Zero}, false)
	assert.Error(t, err)

	// Empty line accepted for draft edits
	err = ValidateLineShape(domain.JournalLine{AccountID: "a", Debit: decimal.Zero, Credit: decimal.Zero}, true)
	assert.NoError(t, err)
}
