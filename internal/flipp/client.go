// Package flipp provides a Flipp flyer API client abstracted behind
// interfaces for testability.
package flipp

import (
	"context"
)

// FlyersRequest defines the parameters for a flyer listing.
type FlyersRequest struct {
	PostalCode string
	Locale     string
	Query      string // merchant name filter, empty for all local flyers
}

// SearchRequest defines the parameters for an item search.
type SearchRequest struct {
	PostalCode string
	Locale     string
	Query      string
}

// Client defines the interface for interacting with the Flipp API.
type Client interface {
	Flyers(ctx context.Context, req FlyersRequest) ([]Flyer, error)
	FlyerItems(ctx context.Context, flyerID int64) ([]Item, error)
	SearchItems(ctx context.Context, req SearchRequest) ([]Item, error)
}
