package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/flyer-price-tracker/pkg/search"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Searcher runs product searches against the catalog.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
}

// SearchHandler handles product search requests.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		SearchTerm string   `json:"search_term"       minLength:"1" maxLength:"200" doc:"Text matched against product name, brand, category and description" example:"milk"`
		SortBy     string   `json:"sort_by,omitempty" enum:"price,unit_price,quantity" doc:"Ranking criterion (default price)" example:"unit_price"`
		Stores     []string `json:"stores,omitempty"  doc:"Restrict results to these store categories or merchant names"`
		Limit      int      `json:"limit,omitempty"   minimum:"0" maximum:"500" doc:"Maximum results to return; 0 returns all" example:"10"`
	}
}

// SearchOutput is the response body for the search endpoint. Results[0] is
// the best deal.
type SearchOutput struct {
	Body *domain.SearchResult
}

// Search ranks the catalog products matching the search term. A term that
// matches nothing yields an empty result with status 200.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := h.searcher.Search(ctx, domain.SearchQuery{
		Term:   input.Body.SearchTerm,
		SortBy: domain.SortBy(input.Body.SortBy),
		Stores: input.Body.Stores,
		Limit:  input.Body.Limit,
	})
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, huma.Error500InternalServerError("search failed: " + err.Error())
	}
	return &SearchOutput{Body: result}, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-products",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search and rank flyer products",
		Description: "Returns the catalog products matching the search term, ranked by " +
			"price, unit price or quantity. The first result is the best deal.",
		Tags:   []string{"search"},
		Errors: []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Search)
}
