package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
	"github.com/donaldgifford/flyer-price-tracker/pkg/unitprice"
)

// ErrInvalidItem is returned for raw items missing required fields.
var ErrInvalidItem = errors.New("invalid raw item")

// errItemPanic wraps a panic recovered while normalizing a single item.
var errItemPanic = errors.New("normalizing item panicked")

// RulePriceBasis names measures taken from per-weight price text.
const RulePriceBasis = "price_basis"

// Stats summarizes one normalization pass.
type Stats struct {
	Received   int `json:"received"`
	Normalized int `json:"normalized"`

	// Drop reasons.
	Invalid  int `json:"invalid"`
	Unpriced int `json:"unpriced"`
	Failed   int `json:"failed"`

	WithoutQuantity  int            `json:"without_quantity"`
	WithoutUnitPrice int            `json:"without_unit_price"`
	Rules            map[string]int `json:"rules"`
}

// Dropped returns the number of items that produced no product.
func (s Stats) Dropped() int {
	return s.Invalid + s.Unpriced + s.Failed
}

// Normalizer turns raw flyer items into canonical products.
type Normalizer struct {
	validate *validator.Validate
	log      *slog.Logger
}

// NormalizerOption configures the Normalizer.
type NormalizerOption func(*Normalizer)

// WithLogger sets the logger used to report dropped items.
func WithLogger(l *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		n.log = l
	}
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		validate: newValidator(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

var defaultNormalizer = NewNormalizer()

// Normalize converts raw items into products using a default Normalizer.
func Normalize(items []domain.RawItem) ([]domain.Product, Stats) {
	return defaultNormalizer.Normalize(items)
}

// Normalize converts raw items into products, preserving input order. Items
// that fail validation or have no parseable price are dropped and counted; a
// failure on one item never affects the others.
func (n *Normalizer) Normalize(items []domain.RawItem) ([]domain.Product, Stats) {
	stats := Stats{Received: len(items), Rules: make(map[string]int)}
	products := make([]domain.Product, 0, len(items))

	for i := range items {
		p, rule, err := n.normalizeSafe(items[i])
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidItem):
				stats.Invalid++
			case errors.Is(err, ErrNoPrice):
				stats.Unpriced++
			default:
				stats.Failed++
			}
			n.log.Debug("dropping raw item",
				"store", items[i].Store,
				"product_name", items[i].Name,
				"error", err,
			)
			continue
		}

		if rule == "" {
			stats.WithoutQuantity++
		} else {
			stats.Rules[rule]++
		}
		if !p.UnitPrice.Valid {
			stats.WithoutUnitPrice++
		}
		products = append(products, p)
	}

	stats.Normalized = len(products)
	return products, stats
}

func (n *Normalizer) normalizeSafe(item domain.RawItem) (p domain.Product, rule string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errItemPanic, r)
		}
	}()
	return n.normalizeOne(trimItem(item))
}

func (n *Normalizer) normalizeOne(item domain.RawItem) (domain.Product, string, error) {
	if err := n.validate.Struct(item); err != nil {
		return domain.Product{}, "", fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	price, err := ParsePrice(item.PriceText, item.PrePriceText)
	if err != nil {
		return domain.Product{}, "", fmt.Errorf("parsing price: %w", err)
	}

	p := domain.Product{
		Store:         item.Store,
		StoreCategory: item.StoreCategory,
		Name:          item.Name,
		Description:   item.QuantityText,
		Brand:         item.Brand,
		Category:      item.Category,
		Price:         price.Amount,
		PrePriceText:  item.PrePriceText,
		PostPriceText: item.PostPriceText,
		SaleStory:     item.SaleStory,
		ValidFrom:     parseTime(item.ValidFrom),
		ValidTo:       parseTime(item.ValidTo),
		ProductURL:    n.productURL(item.URL),
	}

	m, rule, ok := measureFor(item)
	if ok {
		p.Quantity = decimal.NewNullDecimal(m.Quantity)
		p.Unit = m.Unit
		p.UnitPrice = unitprice.ForProduct(&p)
	}
	return p, rule, nil
}

// measureFor returns the per-weight price basis when the post price carries
// one, otherwise the first quantity found in the listing text.
func measureFor(item domain.RawItem) (domain.Measure, string, bool) {
	if m, ok := ParsePriceBasis(item.PostPriceText); ok {
		return m, RulePriceBasis, true
	}
	return ParseQuantityRule(item.QuantityText, item.Name, item.SaleStory)
}

// productURL returns the outbound link, or "" when it is not a valid URL.
func (n *Normalizer) productURL(raw string) string {
	if raw == "" {
		return ""
	}
	if err := n.validate.Var(raw, "url"); err != nil {
		n.log.Debug("ignoring invalid product url", "url", raw)
		return ""
	}
	return raw
}

func trimItem(item domain.RawItem) domain.RawItem {
	for _, s := range []*string{
		&item.Store, &item.StoreCategory, &item.Name, &item.PriceText,
		&item.QuantityText, &item.PrePriceText, &item.PostPriceText,
		&item.SaleStory, &item.ValidFrom, &item.ValidTo, &item.Brand,
		&item.Category, &item.URL,
	} {
		*s = strings.TrimSpace(*s)
	}
	return item
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
