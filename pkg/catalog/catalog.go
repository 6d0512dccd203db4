// Package catalog holds the current set of normalized products behind an
// atomically swapped, immutable snapshot with a full-text index.
package catalog

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Snapshot is an immutable view of the catalog at one generation. A search
// that pins a Snapshot never observes a partially replaced catalog.
type Snapshot struct {
	id          string
	generation  uint64
	refreshedAt time.Time
	products    []domain.Product
	index       *index
}

// ID returns an identifier unique to this snapshot across catalogs and
// processes. Generations restart at 0 in every process; IDs do not repeat.
func (s *Snapshot) ID() string { return s.id }

// Generation returns the monotonically increasing snapshot number. The
// empty catalog a Catalog starts with is generation 0.
func (s *Snapshot) Generation() uint64 { return s.generation }

// RefreshedAt returns when this snapshot was installed.
func (s *Snapshot) RefreshedAt() time.Time { return s.refreshedAt }

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int { return len(s.products) }

// Products returns a copy of every product in catalog order.
func (s *Snapshot) Products() []domain.Product {
	return slices.Clone(s.products)
}

// Match returns, in catalog order, the products whose name, brand, category
// or description contains term, compared case-insensitively after trimming.
// An empty term matches nothing.
func (s *Snapshot) Match(term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	positions := s.index.lookup(term)

	out := make([]domain.Product, 0, len(positions))
	for _, i := range positions {
		out = append(out, s.products[i])
	}
	return out
}

// Stores counts products per store category, sorted by category.
func (s *Snapshot) Stores() []domain.StoreSummary {
	counts := make(map[string]int)
	for i := range s.products {
		key := s.products[i].StoreCategory
		if key == "" {
			key = strings.ToLower(s.products[i].Store)
		}
		counts[key]++
	}

	out := make([]domain.StoreSummary, 0, len(counts))
	for store, n := range counts {
		out = append(out, domain.StoreSummary{StoreCategory: store, Products: n})
	}
	slices.SortFunc(out, func(a, b domain.StoreSummary) int {
		return cmp.Compare(a.StoreCategory, b.StoreCategory)
	})
	return out
}

// Categories returns the distinct non-empty product categories, sorted.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range s.products {
		c := s.products[i].Category
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// Catalog owns the current product snapshot. Replace is the only mutation;
// readers always see either the previous or the new snapshot in full.
type Catalog struct {
	mu      sync.Mutex // serializes Replace
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// New creates an empty catalog at generation 0.
func New(opts ...Option) *Catalog {
	c := &Catalog{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(&Snapshot{id: uuid.NewString(), index: newIndex(nil)})
	return c
}

// Replace installs products as the new catalog contents and returns the new
// generation. The slice is copied; later changes by the caller are not
// observed.
func (c *Catalog) Replace(products []domain.Product) uint64 {
	owned := slices.Clone(products)
	if owned == nil {
		owned = []domain.Product{}
	}
	idx := newIndex(owned)

	c.mu.Lock()
	defer c.mu.Unlock()

	next := &Snapshot{
		id:          uuid.NewString(),
		generation:  c.current.Load().generation + 1,
		refreshedAt: c.now(),
		products:    owned,
		index:       idx,
	}
	c.current.Store(next)
	return next.generation
}

// All returns a copy of the current products.
func (c *Catalog) All() []domain.Product {
	return c.current.Load().Products()
}

// Snapshot returns the current immutable snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}
