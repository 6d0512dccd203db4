package flipp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Flyer is a single store flyer from the /flyers endpoint.
type Flyer struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	MerchantName string `json:"merchant_name"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
}

// Item is a single flyer listing from the /flyers/{id}/items or
// /items/search endpoints.
type Item struct {
	ID            int64     `json:"id"`
	FlyerID       int64     `json:"flyer_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	MerchantName  string    `json:"merchant_name"`
	CurrentPrice  TextField `json:"current_price"`
	Price         TextField `json:"price"`
	PrePriceText  string    `json:"pre_price_text"`
	PostPriceText string    `json:"post_price_text"`
	SaleStory     string    `json:"sale_story"`
	ValidFrom     string    `json:"valid_from"`
	ValidTo       string    `json:"valid_to"`
}

// PriceText returns current_price, falling back to price.
func (i *Item) PriceText() string {
	if s := i.CurrentPrice.String(); s != "" {
		return s
	}
	return i.Price.String()
}

// TextField decodes a JSON string, number or null into its text form. The
// API is inconsistent about quoting prices.
type TextField string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding text field: %w", err)
		}
		*t = TextField(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding text field %s: %w", data, err)
		}
		*t = TextField(n.String())
	}
	return nil
}

func (t TextField) String() string { return string(t) }

type flyersResponse struct {
	Flyers []Flyer `json:"flyers"`
}

type itemsResponse struct {
	Items []Item `json:"items"`
}
