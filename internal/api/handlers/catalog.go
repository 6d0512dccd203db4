package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// SnapshotSource provides the current catalog snapshot.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// CatalogHandler serves read-only views of the catalog.
type CatalogHandler struct {
	source SnapshotSource
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(src SnapshotSource) *CatalogHandler {
	return &CatalogHandler{source: src}
}

// --- Input/Output types ---

// ListProductsInput is the input for paging through catalog products.
type ListProductsInput struct {
	Store  string `query:"store"  doc:"Filter by store category or merchant name"`
	Limit  int    `query:"limit"  doc:"Number of results"                         default:"50" minimum:"1" maximum:"1000"`
	Offset int    `query:"offset" doc:"Pagination offset"                                      minimum:"0"`
}

// ListProductsOutput is the response for paging through catalog products.
type ListProductsOutput struct {
	Body struct {
		Products   []domain.Product `json:"products"`
		Total      int              `json:"total"`
		Limit      int              `json:"limit"`
		Offset     int              `json:"offset"`
		Generation uint64           `json:"generation"`
	}
}

// ListStoresOutput is the response for the per-store product counts.
type ListStoresOutput struct {
	Body struct {
		Stores      []domain.StoreSummary `json:"stores"`
		Generation  uint64                `json:"generation"`
		RefreshedAt *time.Time            `json:"refreshed_at,omitempty"`
	}
}

// ListCategoriesOutput is the response for the distinct product categories.
type ListCategoriesOutput struct {
	Body struct {
		Categories []string `json:"categories"`
	}
}

// --- Handlers ---

// ListProducts returns a page of catalog products in catalog order.
func (h *CatalogHandler) ListProducts(
	_ context.Context,
	input *ListProductsInput,
) (*ListProductsOutput, error) {
	snap := h.source.Snapshot()
	products := filterByStore(snap.Products(), input.Store)

	resp := &ListProductsOutput{}
	resp.Body.Total = len(products)
	resp.Body.Limit = input.Limit
	resp.Body.Offset = input.Offset
	resp.Body.Generation = snap.Generation()

	start := min(input.Offset, len(products))
	end := min(start+input.Limit, len(products))
	resp.Body.Products = products[start:end]
	if resp.Body.Products == nil {
		resp.Body.Products = []domain.Product{}
	}
	return resp, nil
}

// ListStores returns the product count contributed by each store.
func (h *CatalogHandler) ListStores(_ context.Context, _ *struct{}) (*ListStoresOutput, error) {
	snap := h.source.Snapshot()

	resp := &ListStoresOutput{}
	resp.Body.Stores = snap.Stores()
	resp.Body.Generation = snap.Generation()
	if snap.Generation() > 0 {
		t := snap.RefreshedAt()
		resp.Body.RefreshedAt = &t
	}
	return resp, nil
}

// ListCategories returns the distinct product categories in the catalog.
func (h *CatalogHandler) ListCategories(_ context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	resp := &ListCategoriesOutput{}
	resp.Body.Categories = h.source.Snapshot().Categories()
	return resp, nil
}

func filterByStore(products []domain.Product, store string) []domain.Product {
	store = strings.ToLower(strings.TrimSpace(store))
	if store == "" {
		return products
	}
	out := products[:0]
	for i := range products {
		if strings.EqualFold(products[i].StoreCategory, store) || strings.EqualFold(products[i].Store, store) {
			out = append(out, products[i])
		}
	}
	return out
}

// RegisterCatalogRoutes registers catalog endpoints with the Huma API.
func RegisterCatalogRoutes(api huma.API, h *CatalogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List catalog products",
		Description: "Returns a page of products from the current catalog snapshot.",
		Tags:        []string{"catalog"},
	}, h.ListProducts)

	huma.Register(api, huma.Operation{
		OperationID: "list-stores",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores",
		Summary:     "List stores",
		Description: "Returns the number of products each store contributes to the catalog.",
		Tags:        []string{"catalog"},
	}, h.ListStores)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List product categories",
		Tags:        []string{"catalog"},
	}, h.ListCategories)
}
