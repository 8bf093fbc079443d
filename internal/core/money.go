package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are the derived money fields of an order. They are recomputed from
// scratch on every read — never cached — so the displayed numbers can never
// lag behind the latest ledger, discount, fee or payment edit.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ItemsSubtotal sums quantity × unit price over all items.
func ItemsSubtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// OrderTotal applies discount and delivery fee to the subtotal, clamped at
// zero. Whatever the sign or magnitude of the inputs, the result is never
// negative.
func OrderTotal(subtotal, discount, deliveryFee decimal.Decimal) decimal.Decimal {
	return clampZero(subtotal.Sub(discount).Add(deliveryFee))
}

// RemainingBalance returns the unpaid part of the total, clamped at zero so
// an overpayment never produces a negative balance.
func RemainingBalance(total, amountPaid decimal.Decimal) decimal.Decimal {
	return clampZero(total.Sub(amountPaid))
}

// ComputeTotals derives subtotal, total and remaining from the current state.
func ComputeTotals(items []Item, discount, deliveryFee, amountPaid decimal.Decimal) Totals {
	subtotal := ItemsSubtotal(items)
	total := OrderTotal(subtotal, discount, deliveryFee)
	return Totals{
		Subtotal:  subtotal,
		Total:     total,
		Remaining: RemainingBalance(total, amountPaid),
	}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders a value with two decimals and a comma separator, the
// way the dashboard and the customer messages display money ("1234,56").
// Internal values keep full precision; rounding happens only here.
func FormatMoney(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// DigitsOnly strips everything but decimal digits from a phone number.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
