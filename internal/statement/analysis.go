package statement

import (
	"github.com/shopspring/decimal"
)

// Sentinel replaces any ratio whose denominator is zero.
const Sentinel = "–"

var hundred = decimal.NewFromInt(100)

// ratio returns num/den*100 with one decimal, or Sentinel when den is zero.
func ratio(num, den decimal.Decimal) string {
	if den.IsZero() {
		return Sentinel
	}
	return num.Div(den).Mul(hundred).StringFixed(1) + "%"
}

// Vertical is the share of value in base.
func Vertical(value, base decimal.Decimal) string {
	return ratio(value, base)
}

// Horizontal is the change from previous to current.
func Horizontal(current, previous decimal.Decimal) string {
	return ratio(current.Sub(previous), previous)
}

// BudgetVariance is the deviation of realized from budget.
func BudgetVariance(realized, budget decimal.Decimal) string {
	return ratio(realized.Sub(budget), budget)
}
