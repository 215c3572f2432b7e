// Package billing holds the pure money arithmetic shared by invoices,
// quotes and work orders. All amounts are net euro values handled as
// decimals; rounding is half-up to two places and happens exactly once
// per derived figure.
package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal computes the stored total of a single line. Negative inputs
// pass through arithmetically; validating them is the caller's job.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(unitPrice))
}

// Totals carries every derived monetary figure of a document.
type Totals struct {
	NetBeforeDiscount decimal.Decimal
	DiscountPercent   decimal.Decimal
	DiscountAmount    decimal.Decimal
	Net               decimal.Decimal
	TaxRate           decimal.Decimal
	Tax               decimal.Decimal
	Gross             decimal.Decimal
}

// ComputeTotals sums already-rounded line totals and derives discount,
// tax and gross amounts. A discount is applied to the net sum before
// tax. An empty line list yields all-zero totals. The function is pure;
// identical input always produces identical output.
func ComputeTotals(lineTotals []decimal.Decimal, taxRatePercent, discountPercent decimal.Decimal) Totals {
	net := decimal.Zero
	for _, lt := range lineTotals {
		net = net.Add(lt)
	}
	t := Totals{
		NetBeforeDiscount: net,
		DiscountPercent:   discountPercent,
		DiscountAmount:    decimal.Zero,
		TaxRate:           taxRatePercent,
	}
	if discountPercent.IsPositive() {
		t.DiscountAmount = Round2(net.Mul(discountPercent).Div(hundred))
		net = net.Sub(t.DiscountAmount)
	}
	t.Net = net
	t.Tax = Round2(net.Mul(taxRatePercent).Div(hundred))
	// Both operands already carry two decimals, no further rounding.
	t.Gross = net.Add(t.Tax)
	return t
}
