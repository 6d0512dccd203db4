// Package web serves a minimal HTML search page over the catalog.
package web

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.1001 generate

import (
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// PageData is everything the search page renders.
type PageData struct {
	Term   string
	SortBy domain.SortBy
	Store  string
	Error  string
	Result *domain.SearchResult
}

type sortOption struct {
	value domain.SortBy
	label string
}

var sortOptions = []sortOption{
	{domain.SortByPrice, "Price"},
	{domain.SortByUnitPrice, "Unit price"},
	{domain.SortByQuantity, "Quantity"},
}

// quantityLabel renders "4 L", "500 g" or N/A.
func quantityLabel(p *domain.Product) string {
	q := domain.FormatNullQuantity(p.Quantity)
	if q != domain.NotAvailable && p.Unit != domain.UnitNone {
		q += " " + string(p.Unit)
	}
	return q
}
