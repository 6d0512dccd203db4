package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// SearchRequest is the body of a product search.
type SearchRequest struct {
	SearchTerm string   `json:"search_term"`
	SortBy     string   `json:"sort_by,omitempty"`
	Stores     []string `json:"stores,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Search ranks catalog products matching the request. Results[0] is the
// best deal.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*domain.SearchResult, error) {
	var result domain.SearchResult
	if err := c.post(ctx, "/api/v1/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProductsResponse wraps a page of catalog products.
type ProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Total      int              `json:"total"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	Generation uint64           `json:"generation"`
}

// ListProductsParams defines query parameters for listing products.
type ListProductsParams struct {
	Store  string
	Limit  int
	Offset int
}

// ListProducts returns a page of catalog products.
func (c *Client) ListProducts(ctx context.Context, params *ListProductsParams) (*ProductsResponse, error) {
	q := url.Values{}
	if params.Store != "" {
		q.Set("store", params.Store)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}

	path := "/api/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ProductsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AllProducts pages through the whole catalog.
func (c *Client) AllProducts(ctx context.Context, store string) ([]domain.Product, error) {
	const pageSize = 1000

	var all []domain.Product
	for offset := 0; ; offset += pageSize {
		page, err := c.ListProducts(ctx, &ListProductsParams{Store: store, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Products...)
		if len(page.Products) < pageSize || len(all) >= page.Total {
			return all, nil
		}
	}
}

// StoresResponse lists per-store product counts.
type StoresResponse struct {
	Stores      []domain.StoreSummary `json:"stores"`
	Generation  uint64                `json:"generation"`
	RefreshedAt *time.Time            `json:"refreshed_at,omitempty"`
}

// ListStores returns the product count contributed by each store.
func (c *Client) ListStores(ctx context.Context) (*StoresResponse, error) {
	var resp StoresResponse
	if err := c.get(ctx, "/api/v1/stores", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCategories returns the distinct product categories.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := c.get(ctx, "/api/v1/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}
