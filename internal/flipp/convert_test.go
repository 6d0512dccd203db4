package flipp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const webURL = "https://flipp.com/en-ca"

func TestToRawItems(t *testing.T) {
	t.Parallel()

	flyer := &flipp.Flyer{
		ID:           101,
		MerchantName: "Metro",
		ValidFrom:    "2025-05-08T00:00:00-04:00",
		ValidTo:      "2025-05-14T23:59:59-04:00",
	}

	tests := []struct {
		name   string
		items  []flipp.Item
		origin flipp.Origin
		want   []domain.RawItem
	}{
		{
			name:   "empty input returns empty slice",
			items:  nil,
			origin: flipp.OriginFromFlyer(flyer, "metro"),
			want:   []domain.RawItem{},
		},
		{
			name: "flyer item inherits flyer dates",
			items: []flipp.Item{{
				ID:            9001,
				FlyerID:       101,
				Name:          "Lean Ground Beef",
				Description:   "500 g",
				Brand:         "Butcher's Choice",
				Category:      "Meat",
				CurrentPrice:  "5.99",
				PostPriceText: "",
				SaleStory:     "SAVE $2",
			}},
			origin: flipp.OriginFromFlyer(flyer, "metro"),
			want: []domain.RawItem{{
				Store:         "Metro",
				StoreCategory: "metro",
				Name:          "Lean Ground Beef",
				PriceText:     "5.99",
				QuantityText:  "500 g",
				SaleStory:     "SAVE $2",
				ValidFrom:     "2025-05-08T00:00:00-04:00",
				ValidTo:       "2025-05-14T23:59:59-04:00",
				Brand:         "Butcher's Choice",
				Category:      "Meat",
				URL:           "https://flipp.com/en-ca/flyer/101/item/9001",
			}},
		},
		{
			name: "search item uses its own merchant and dates",
			items: []flipp.Item{{
				ID:           12,
				FlyerID:      77,
				Name:         "Milk 2%",
				MerchantName: "Walmart",
				Price:        "4.99",
				ValidFrom:    "2025-05-09",
			}},
			origin: flipp.Origin{StoreCategory: "walmart"},
			want: []domain.RawItem{{
				Store:         "Walmart",
				StoreCategory: "walmart",
				Name:          "Milk 2%",
				PriceText:     "4.99",
				ValidFrom:     "2025-05-09",
				URL:           "https://flipp.com/en-ca/flyer/77/item/12",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, flipp.ToRawItems(tt.items, tt.origin, webURL))
		})
	}
}

func TestProductURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://flipp.com/en-ca/flyer/1/item/2", flipp.ProductURL(webURL+"/", 1, 2))
	assert.Equal(t, "https://flipp.com/en-ca/flyer/1", flipp.ProductURL(webURL, 1, 0))
	assert.Empty(t, flipp.ProductURL(webURL, 0, 2))
	assert.Empty(t, flipp.ProductURL("", 1, 2))
}
