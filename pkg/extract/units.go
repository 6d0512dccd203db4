package extract

import (
	"strings"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// unitMap maps unit spellings found in flyer text to domain units.
var unitMap = map[string]domain.Unit{
	// mass
	"kg":        domain.UnitKg,
	"kgs":       domain.UnitKg,
	"kilogram":  domain.UnitKg,
	"kilograms": domain.UnitKg,
	"g":         domain.UnitG,
	"gr":        domain.UnitG,
	"gram":      domain.UnitG,
	"grams":     domain.UnitG,
	"lb":        domain.UnitLb,
	"lbs":       domain.UnitLb,
	"pound":     domain.UnitLb,
	"pounds":    domain.UnitLb,
	"oz":        domain.UnitOz,
	"ounce":     domain.UnitOz,
	"ounces":    domain.UnitOz,
	// volume
	"ml":          domain.UnitMl,
	"millilitre":  domain.UnitMl,
	"millilitres": domain.UnitMl,
	"milliliter":  domain.UnitMl,
	"milliliters": domain.UnitMl,
	"l":           domain.UnitL,
	"litre":       domain.UnitL,
	"litres":      domain.UnitL,
	"liter":       domain.UnitL,
	"liters":      domain.UnitL,
	// count
	"pack":  domain.UnitPack,
	"pk":    domain.UnitPack,
	"count": domain.UnitCount,
	"ct":    domain.UnitCount,
	"ea":    domain.UnitCount,
	"each":  domain.UnitCount,
}

// NormalizeUnit maps a raw unit spelling to a domain.Unit. Returns
// domain.UnitNone if the input is not a recognized unit.
func NormalizeUnit(raw string) domain.Unit {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return domain.UnitNone
	}
	return unitMap[normalized]
}
