package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/internal/api/handlers"
	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
)

func TestCatalogHandler_ListProducts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  int
		wantNames  []string
		wantLimit  int
	}{
		{
			name:       "defaults",
			wantStatus: http.StatusOK,
			wantTotal:  4,
			wantNames:  []string{"Milk 2% 4L", "Milk 1%", "Chocolate Milk", "Bread"},
			wantLimit:  50,
		},
		{
			name:       "pagination",
			query:      "?limit=2&offset=1",
			wantStatus: http.StatusOK,
			wantTotal:  4,
			wantNames:  []string{"Milk 1%", "Chocolate Milk"},
			wantLimit:  2,
		},
		{
			name:       "offset past the end",
			query:      "?offset=10",
			wantStatus: http.StatusOK,
			wantTotal:  4,
			wantNames:  []string{},
			wantLimit:  50,
		},
		{
			name:       "store category filter",
			query:      "?store=WALMART",
			wantStatus: http.StatusOK,
			wantTotal:  1,
			wantNames:  []string{"Milk 1%"},
			wantLimit:  50,
		},
		{
			name:       "merchant name filter",
			query:      "?store=walmart%20supercentre",
			wantStatus: http.StatusOK,
			wantTotal:  1,
			wantNames:  []string{"Milk 1%"},
			wantLimit:  50,
		},
		{
			name:       "limit out of range",
			query:      "?limit=5000",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(testCatalog()))

			resp := api.Get("/api/v1/products" + tt.query)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got struct {
				Products []struct {
					Name string `json:"product_name"`
				} `json:"products"`
				Total      int    `json:"total"`
				Limit      int    `json:"limit"`
				Generation uint64 `json:"generation"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

			names := make([]string, 0, len(got.Products))
			for _, p := range got.Products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, uint64(1), got.Generation)
		})
	}
}

func TestCatalogHandler_ListStores(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(testCatalog()))

	resp := api.Get("/api/v1/stores")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `{"store_category":"metro","products":3}`)
	assert.Contains(t, resp.Body.String(), `{"store_category":"walmart","products":1}`)
	assert.Contains(t, resp.Body.String(), `"refreshed_at"`)
}

func TestCatalogHandler_EmptyCatalog(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(catalog.New()))

	resp := api.Get("/api/v1/stores")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"stores":[],"generation":0}`, resp.Body.String())

	resp = api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"categories":[]}`, resp.Body.String())

	resp = api.Get("/api/v1/products")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"products":[]`)
}

func TestCatalogHandler_ListCategories(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(testCatalog()))

	resp := api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"categories":["Bakery","Dairy"]}`, resp.Body.String())
}
