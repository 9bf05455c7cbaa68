// Package pricing computes order amounts. All amounts are rounded half away from
// zero to two decimal places, which for non-negative money is round-half-up.
package pricing

import "github.com/shopspring/decimal"

const places = 2

// Policy holds the fixed checkout charges.
type Policy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPolicy is 18% tax and a flat 100 shipping fee waived above 500.
var DefaultPolicy = Policy{
	TaxRate:               decimal.RequireFromString("0.18"),
	FreeShippingThreshold: decimal.NewFromInt(500),
	FlatShippingFee:       decimal.NewFromInt(100),
}

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate prices lines under p. An empty set of lines costs nothing, shipping
// included.
func (p Policy) Calculate(lines []Line) Summary {
	if len(lines) == 0 {
		return Summary{}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(places)

	tax := subtotal.Mul(p.TaxRate).Round(places)

	shipping := p.FlatShippingFee.Round(places)
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// Calculate prices lines under DefaultPolicy.
func Calculate(lines []Line) Summary {
	return DefaultPolicy.Calculate(lines)
}
