package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/internal/api/handlers"
	"github.com/donaldgifford/flyer-price-tracker/internal/cache"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

type searchResponse struct {
	Results []struct {
		Name      string  `json:"product_name"`
		Price     string  `json:"price"`
		UnitPrice *string `json:"unit_price"`
	} `json:"results"`
	Count      int    `json:"count"`
	SearchTerm string `json:"search_term"`
	SortBy     string `json:"sort_by"`
}

func TestSearchHandler_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantNames  []string
		wantCount  int
		wantSort   string
		wantBody   string
	}{
		{
			name:       "defaults to price ranking",
			body:       map[string]any{"search_term": "milk"},
			wantStatus: http.StatusOK,
			wantNames:  []string{"Chocolate Milk", "Milk 1%", "Milk 2% 4L"},
			wantCount:  3,
			wantSort:   "price",
		},
		{
			name:       "unit price ranking puts absent unit prices last",
			body:       map[string]any{"search_term": "MILK", "sort_by": "unit_price"},
			wantStatus: http.StatusOK,
			wantNames:  []string{"Milk 1%", "Milk 2% 4L", "Chocolate Milk"},
			wantCount:  3,
			wantSort:   "unit_price",
		},
		{
			name:       "limit keeps total count",
			body:       map[string]any{"search_term": "milk", "limit": 1},
			wantStatus: http.StatusOK,
			wantNames:  []string{"Chocolate Milk"},
			wantCount:  3,
			wantSort:   "price",
		},
		{
			name:       "store filter",
			body:       map[string]any{"search_term": "milk", "stores": []string{"walmart"}},
			wantStatus: http.StatusOK,
			wantNames:  []string{"Milk 1%"},
			wantCount:  1,
			wantSort:   "price",
		},
		{
			name:       "no match is an empty result",
			body:       map[string]any{"search_term": "caviar"},
			wantStatus: http.StatusOK,
			wantNames:  []string{},
			wantCount:  0,
			wantSort:   "price",
		},
		{
			name:       "whitespace term returns 400",
			body:       map[string]any{"search_term": "   "},
			wantStatus: http.StatusBadRequest,
			wantBody:   "search term is required",
		},
		{
			name:       "missing term returns 422",
			body:       map[string]any{"sort_by": "price"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown sort returns 422",
			body:       map[string]any{"search_term": "milk", "sort_by": "rating"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			searcher := cache.NewSearcher(testCatalog(), cache.WithLogger(logger.Nop()))
			h := handlers.NewSearchHandler(searcher)

			_, api := humatest.New(t)
			handlers.RegisterSearchRoutes(api, h)

			resp := api.Post("/api/v1/search", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())

			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
			if tt.wantNames == nil {
				return
			}

			var got searchResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			names := make([]string, 0, len(got.Results))
			for _, r := range got.Results {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantCount, got.Count)
			assert.Equal(t, tt.wantSort, got.SortBy)
		})
	}
}

func TestSearchHandler_AbsentUnitPriceIsNull(t *testing.T) {
	t.Parallel()

	h := handlers.NewSearchHandler(cache.NewSearcher(testCatalog(), cache.WithLogger(logger.Nop())))
	_, api := humatest.New(t)
	handlers.RegisterSearchRoutes(api, h)

	resp := api.Post("/api/v1/search", map[string]any{"search_term": "chocolate"})
	require.Equal(t, http.StatusOK, resp.Code)

	var got searchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "2.99", got.Results[0].Price)
	assert.Nil(t, got.Results[0].UnitPrice)
	assert.NotContains(t, resp.Body.String(), "N/A")
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, domain.SearchQuery) (*domain.SearchResult, error) {
	return nil, errors.New("snapshot unavailable")
}

func TestSearchHandler_InternalError(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(failingSearcher{}))

	resp := api.Post("/api/v1/search", map[string]any{"search_term": "milk"})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "search failed")
}
