package search

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
	"github.com/donaldgifford/flyer-price-tracker/pkg/unitprice"
)

// Rank sorts products in place by the given criterion. The sort is stable, so
// products that tie on every key keep their catalog order.
func Rank(products []domain.Product, by domain.SortBy) {
	switch by {
	case domain.SortByUnitPrice:
		slices.SortStableFunc(products, byUnitPrice)
	case domain.SortByQuantity:
		slices.SortStableFunc(products, byQuantity)
	default:
		slices.SortStableFunc(products, byPrice)
	}
}

// byPrice orders by price ascending, then store name.
func byPrice(a, b domain.Product) int {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c
	}
	return compareStore(a, b)
}

// byUnitPrice orders products with a unit price first, ascending, and
// products without one after them, by price.
func byUnitPrice(a, b domain.Product) int {
	if c := comparePresence(a.UnitPrice.Valid, b.UnitPrice.Valid); c != 0 {
		return c
	}
	if a.UnitPrice.Valid {
		if c := a.UnitPrice.Decimal.Cmp(b.UnitPrice.Decimal); c != 0 {
			return c
		}
	}
	return byPrice(a, b)
}

// byQuantity orders the largest base quantity first; products without a
// quantity come last. Ties fall back to price.
func byQuantity(a, b domain.Product) int {
	qa, okA := baseQuantity(a)
	qb, okB := baseQuantity(b)
	if c := comparePresence(okA, okB); c != 0 {
		return c
	}
	if okA {
		if c := qb.Cmp(qa); c != 0 {
			return c
		}
	}
	return byPrice(a, b)
}

func baseQuantity(p domain.Product) (decimal.Decimal, bool) {
	m, ok := p.Measure()
	if !ok {
		return decimal.Decimal{}, false
	}
	return unitprice.BaseQuantity(m)
}

// comparePresence sorts present values before absent ones.
func comparePresence(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// compareStore orders by store name, byte-wise lexicographic.
func compareStore(a, b domain.Product) int {
	return strings.Compare(a.Store, b.Store)
}
