// Package pricing computes quotation totals. The storefront previews totals
// with the same algorithm before submission, so any change here is a contract
// change for every client.
package pricing

import "math"

// LineInput describes one priced quotation line. When both discount fields are
// set, the percentage takes precedence over the fixed amount.
type LineInput struct {
	Quantity        int64
	UnitPrice       float64
	DiscountPercent float64
	DiscountAmount  float64
}

// DocumentInput carries all lines plus document-level adjustments.
type DocumentInput struct {
	Lines           []LineInput
	DiscountPercent float64
	DiscountAmount  float64
	TaxPercent      float64
	ShippingAmount  float64
}

// Totals holds the aggregate monetary fields of a quotation, each rounded to
// two decimal places.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	ShippingAmount float64 `json:"shipping_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// Round applies half-up rounding to two decimal places. Monetary values are
// rounded only at output boundaries, never mid-accumulation.
func Round(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Floor(v*100+0.5) / 100
}

// LineTotal computes the post-discount total for one line. Discounts are
// clamped so a line never goes negative.
func LineTotal(in LineInput) float64 {
	gross, discount := lineParts(in)
	return Round(gross - discount)
}

func lineParts(in LineInput) (gross, discount float64) {
	qty := in.Quantity
	if qty < 0 {
		qty = 0
	}
	price := clampNonNegative(in.UnitPrice)
	gross = float64(qty) * price

	switch {
	case in.DiscountPercent > 0:
		discount = gross * clampPercent(in.DiscountPercent) / 100
	case in.DiscountAmount > 0:
		discount = math.Min(in.DiscountAmount, gross)
	}
	return gross, discount
}

// Calculate aggregates line totals and applies the document-level discount,
// tax, and shipping. Tax applies after the document discount and excludes
// shipping.
func Calculate(in DocumentInput) Totals {
	// The subtotal sums the rounded per-line totals so it always matches the
	// line_total figures shown to the customer.
	var subtotal float64
	for _, line := range in.Lines {
		subtotal += LineTotal(line)
	}

	var docDiscount float64
	switch {
	case in.DiscountPercent > 0:
		docDiscount = subtotal * clampPercent(in.DiscountPercent) / 100
	case in.DiscountAmount > 0:
		docDiscount = math.Min(clampNonNegative(in.DiscountAmount), subtotal)
	}

	discounted := subtotal - docDiscount
	tax := discounted * clampPercent(in.TaxPercent) / 100
	shipping := clampNonNegative(in.ShippingAmount)

	return Totals{
		Subtotal:       Round(subtotal),
		DiscountAmount: Round(docDiscount),
		TaxAmount:      Round(tax),
		ShippingAmount: Round(shipping),
		TotalAmount:    Round(discounted + tax + shipping),
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
