// Package domain defines the core business types for the flyer price tracker.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a normalized quantity unit extracted from flyer text.
type Unit string

// Unit constants. UnitNone marks an absent unit.
const (
	UnitNone  Unit = ""
	UnitKg    Unit = "kg"
	UnitG     Unit = "g"
	UnitLb    Unit = "lb"
	UnitOz    Unit = "oz"
	UnitMl    Unit = "ml"
	UnitL     Unit = "L"
	UnitPack  Unit = "pack"
	UnitCount Unit = "count"
)

// Family groups units that convert into a common base.
type Family string

// Family constants.
const (
	FamilyNone   Family = ""
	FamilyMass   Family = "mass"
	FamilyVolume Family = "volume"
	FamilyCount  Family = "count"
)

// Family reports which conversion family u belongs to.
func (u Unit) Family() Family {
	switch u {
	case UnitKg, UnitG, UnitLb, UnitOz:
		return FamilyMass
	case UnitMl, UnitL:
		return FamilyVolume
	case UnitPack, UnitCount:
		return FamilyCount
	default:
		return FamilyNone
	}
}

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	return u.Family() != FamilyNone
}

// Measure is a positive quantity paired with its unit.
type Measure struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     Unit            `json:"unit"`
}

// RawItem is a flyer listing as harvested, before any extraction.
type RawItem struct {
	Store         string `json:"store"           validate:"required"`
	StoreCategory string `json:"store_category"`
	Name          string `json:"product_name"    validate:"required"`
	PriceText     string `json:"price"`
	QuantityText  string `json:"description"`
	PrePriceText  string `json:"pre_price_text"`
	PostPriceText string `json:"post_price_text"`
	SaleStory     string `json:"sale_story"`
	ValidFrom     string `json:"valid_from"`
	ValidTo       string `json:"valid_to"`
	Brand         string `json:"brand"`
	Category      string `json:"category"`
	URL           string `json:"product_url"`
}

// Product is the canonical, normalized form of a flyer listing.
type Product struct {
	Store         string `json:"store"          db:"store"`
	StoreCategory string `json:"store_category" db:"store_category"`
	Name          string `json:"product_name"   db:"product_name"`
	Description   string `json:"description"    db:"description"`
	Brand         string `json:"brand"          db:"brand"`
	Category      string `json:"category"       db:"category"`

	// Pricing
	Price         decimal.Decimal     `json:"price"           db:"price"`
	Quantity      decimal.NullDecimal `json:"quantity"        db:"quantity"`
	Unit          Unit                `json:"unit"            db:"unit"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"      db:"unit_price"`
	PrePriceText  string              `json:"pre_price_text"  db:"pre_price_text"`
	PostPriceText string              `json:"post_price_text" db:"post_price_text"`
	SaleStory     string              `json:"sale_story"      db:"sale_story"`

	// Validity
	ValidFrom *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"   db:"valid_to"`

	ProductURL string `json:"product_url,omitempty" db:"product_url"`
}

// Measure returns the product's quantity and unit, if both are present.
func (p *Product) Measure() (Measure, bool) {
	if !p.Quantity.Valid || p.Unit == UnitNone {
		return Measure{}, false
	}
	return Measure{Quantity: p.Quantity.Decimal, Unit: p.Unit}, true
}

// SortBy selects the ranking criterion for a search.
type SortBy string

// Sort criteria.
const (
	SortByPrice     SortBy = "price"
	SortByUnitPrice SortBy = "unit_price"
	SortByQuantity  SortBy = "quantity"
)

// Valid reports whether s is a known sort criterion.
func (s SortBy) Valid() bool {
	switch s {
	case SortByPrice, SortByUnitPrice, SortByQuantity:
		return true
	default:
		return false
	}
}

// SearchQuery is a caller's product search request.
type SearchQuery struct {
	Term   string   `json:"search_term"`
	SortBy SortBy   `json:"sort_by"`
	Stores []string `json:"stores,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// SearchResult holds ranked matches for a query. Results[0] is the best deal.
type SearchResult struct {
	Results    []Product `json:"results"`
	Count      int       `json:"count"`
	SearchTerm string    `json:"search_term"`
	SortBy     SortBy    `json:"sort_by"`
	Generation uint64    `json:"generation"`
}

// BestDeal returns the top-ranked product, or nil when nothing matched.
func (r *SearchResult) BestDeal() *Product {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}

// StoreSummary counts the products a store contributes to the catalog.
type StoreSummary struct {
	StoreCategory string `json:"store_category"`
	Products      int    `json:"products"`
}

// RefreshRun records a single catalog refresh.
type RefreshRun struct {
	ID          string     `json:"id"                     db:"id"`
	Trigger     string     `json:"trigger"                db:"trigger"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status      string     `json:"status"                 db:"status"`
	ErrorText   string     `json:"error_text,omitempty"   db:"error_text"`
	Flyers      int        `json:"flyers"                 db:"flyers"`
	Items       int        `json:"items"                  db:"items"`
	Products    int        `json:"products"               db:"products"`
	Dropped     int        `json:"dropped"                db:"dropped"`
}

// Refresh run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)
