// Package search filters the catalog by a search term and ranks the matches
// by price, unit price or quantity.
package search

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// ErrInvalidQuery is returned for queries that cannot be executed.
var ErrInvalidQuery = errors.New("invalid search query")

// ErrEmptyTerm is returned when the search term is empty after trimming.
var ErrEmptyTerm = fmt.Errorf("%w: search term is required", ErrInvalidQuery)

// Source provides the catalog snapshot to search.
type Source interface {
	Snapshot() *catalog.Snapshot
}

// Search runs q against a single snapshot of src. A query that matches
// nothing yields an empty result, not an error.
func Search(src Source, q domain.SearchQuery) (*domain.SearchResult, error) {
	q, err := Normalize(q)
	if err != nil {
		return nil, err
	}

	snap := src.Snapshot()
	matches := filterStores(snap.Match(q.Term), q.Stores)
	Rank(matches, q.SortBy)

	result := &domain.SearchResult{
		Results:    matches,
		Count:      len(matches),
		SearchTerm: q.Term,
		SortBy:     q.SortBy,
		Generation: snap.Generation(),
	}
	if q.Limit > 0 && len(result.Results) > q.Limit {
		result.Results = result.Results[:q.Limit]
	}
	return result, nil
}

// Normalize trims the term, defaults the sort criterion to price and
// validates the query.
func Normalize(q domain.SearchQuery) (domain.SearchQuery, error) {
	q.Term = strings.TrimSpace(q.Term)
	if q.Term == "" {
		return q, ErrEmptyTerm
	}

	if q.SortBy == "" {
		q.SortBy = domain.SortByPrice
	}
	if !q.SortBy.Valid() {
		return q, fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, q.SortBy)
	}

	if q.Limit < 0 {
		return q, fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}

	stores := make([]string, 0, len(q.Stores))
	for _, s := range q.Stores {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			stores = append(stores, s)
		}
	}
	q.Stores = stores
	return q, nil
}

func filterStores(products []domain.Product, stores []string) []domain.Product {
	if len(stores) == 0 {
		return products
	}
	return slices.DeleteFunc(products, func(p domain.Product) bool {
		return !slices.Contains(stores, strings.ToLower(p.StoreCategory)) &&
			!slices.Contains(stores, strings.ToLower(p.Store))
	})
}
