// Package unitprice converts a price and measure into a comparable price per
// 100 g (mass) or per 100 mL (volume).
package unitprice

import (
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)

	// toBase converts one unit into grams (mass) or millilitres (volume).
	toBase = map[domain.Unit]decimal.Decimal{
		domain.UnitG:  decimal.NewFromInt(1),
		domain.UnitKg: decimal.NewFromInt(1000),
		domain.UnitLb: decimal.RequireFromString("453.592"),
		domain.UnitOz: decimal.RequireFromString("28.3495"),
		domain.UnitMl: decimal.NewFromInt(1),
		domain.UnitL:  decimal.NewFromInt(1000),
	}
)

// BaseQuantity converts m into grams or millilitres. Count and pack units
// are returned unchanged. Returns (zero, false) for an invalid measure.
func BaseQuantity(m domain.Measure) (decimal.Decimal, bool) {
	if !m.Quantity.IsPositive() {
		return decimal.Decimal{}, false
	}
	if m.Unit.Family() == domain.FamilyCount {
		return m.Quantity, true
	}
	factor, ok := toBase[m.Unit]
	if !ok {
		return decimal.Decimal{}, false
	}
	return m.Quantity.Mul(factor), true
}

// Calculate returns the price per 100 g or 100 mL, rounded half-up to two
// decimal places. Count and pack measures never produce a unit price.
func Calculate(price decimal.Decimal, m domain.Measure) (decimal.Decimal, bool) {
	switch m.Unit.Family() {
	case domain.FamilyMass, domain.FamilyVolume:
	default:
		return decimal.Decimal{}, false
	}

	base, ok := BaseQuantity(m)
	if !ok || price.IsNegative() {
		return decimal.Decimal{}, false
	}
	return price.Div(base).Mul(hundred).Round(2), true
}

// ForProduct computes the unit price for a product's own price and measure.
func ForProduct(p *domain.Product) decimal.NullDecimal {
	m, ok := p.Measure()
	if !ok {
		return decimal.NullDecimal{}
	}
	up, ok := Calculate(p.Price, m)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(up)
}
