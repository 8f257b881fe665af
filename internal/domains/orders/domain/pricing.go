package domain

import "github.com/shopspring/decimal"

var (
	// TaxRate is applied to the items subtotal.
	TaxRate = decimal.RequireFromString("0.08")
	// FlatShipping is charged on every non-empty order.
	FlatShipping = decimal.NewFromInt(10)

	totalsTolerance = decimal.RequireFromString("0.01")
)

// Totals are the order money figures, each rounded to cents.
type Totals struct {
	Items    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals prices items. Total is the sum of the rounded parts so the
// identity items + tax + shipping == total holds exactly.
func CalculateTotals(items []LineItem) Totals {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	t := Totals{Items: sum.Round(2), Shipping: decimal.Zero}
	t.Tax = t.Items.Mul(TaxRate).Round(2)
	if t.Items.IsPositive() {
		t.Shipping = FlatShipping
	}
	t.Total = t.Items.Add(t.Tax).Add(t.Shipping)
	return t
}

// Matches reports whether every figure of other is within one cent of t.
func (t Totals) Matches(other Totals) bool {
	pairs := [][2]decimal.Decimal{
		{t.Items, other.Items},
		{t.Tax, other.Tax},
		{t.Shipping, other.Shipping},
		{t.Total, other.Total},
	}
	for _, p := range pairs {
		if p[0].Sub(p[1]).Abs().GreaterThan(totalsTolerance) {
			return false
		}
	}
	return true
}
