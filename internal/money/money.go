// Package money implements exact decimal arithmetic for document totals.
//
// All computation is performed with decimal values; rounding happens once,
// at presentation or persistence, never between steps.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput is the raw pricing data of a single document line.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// LineAmounts is the exact result of pricing a single line.
type LineAmounts struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// DocumentTotals aggregates line amounts across a whole document.
type DocumentTotals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Line prices a single line. Discount applies to the gross amount, tax to the
// discounted amount.
func Line(in LineInput) LineAmounts {
	gross := in.Quantity.Mul(in.UnitPrice)
	discount := gross.Mul(in.DiscountPercent).Div(hundred)
	net := gross.Sub(discount)
	tax := net.Mul(in.TaxPercent).Div(hundred)
	return LineAmounts{
		Gross:    gross,
		Discount: discount,
		Tax:      tax,
		Total:    net.Add(tax),
	}
}

// PerLineTotals aggregates lines that carry their own discount and tax rates.
// Lines are processed in the order given. An empty slice yields zero totals.
func PerLineTotals(lines []LineInput) DocumentTotals {
	var t DocumentTotals
	for _, in := range lines {
		amounts := Line(in)
		t.Subtotal = t.Subtotal.Add(amounts.Gross)
		t.Discount = t.Discount.Add(amounts.Discount)
		t.Tax = t.Tax.Add(amounts.Tax)
	}
	t.GrandTotal = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t
}

// FlatRateTotals aggregates lines under a single document-level discount and
// tax rate. The rates apply to the whole subtotal, not to individual lines.
// An empty slice yields zero totals.
func FlatRateTotals(lines []LineInput, discountPercent, taxPercent decimal.Decimal) DocumentTotals {
	var subtotal decimal.Decimal
	for _, in := range lines {
		subtotal = subtotal.Add(in.Quantity.Mul(in.UnitPrice))
	}
	discount := subtotal.Mul(discountPercent).Div(hundred)
	net := subtotal.Sub(discount)
	tax := net.Mul(taxPercent).Div(hundred)
	return DocumentTotals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		GrandTotal: net.Add(tax),
	}
}

// Round2 rounds a value to the presentation scale of two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders a monetary value as rupees at scale 2, e.g. "₹159.30".
func FormatAmount(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// FormatPercent renders a rate with one decimal place, e.g. "18.0%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
