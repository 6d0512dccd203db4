package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered wherever a value is absent in human-facing output.
const NotAvailable = "N/A"

// OrNotAvailable returns s, or NotAvailable when s is empty.
func OrNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// FormatMoney renders d with two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatNullMoney renders d with two decimal places, or NotAvailable.
func FormatNullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.StringFixed(2)
}

// FormatNullQuantity renders d in its shortest exact form, or NotAvailable.
func FormatNullQuantity(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.String()
}

// FormatDate renders t as YYYY-MM-DD, or NotAvailable.
func FormatDate(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return t.Format(time.DateOnly)
}

// UnitPriceBasis names the reference amount a unit price is quoted per.
func (p *Product) UnitPriceBasis() string {
	switch p.Unit.Family() {
	case FamilyMass:
		return "100 g"
	case FamilyVolume:
		return "100 mL"
	default:
		return ""
	}
}

// UnitPriceLabel renders the unit price with its basis, e.g. "1.20 / 100 g".
func (p *Product) UnitPriceLabel() string {
	if !p.UnitPrice.Valid {
		return NotAvailable
	}
	return p.UnitPrice.Decimal.StringFixed(2) + " / " + p.UnitPriceBasis()
}
