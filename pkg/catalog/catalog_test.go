package catalog_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func product(store, name, brand, category, description string) domain.Product {
	return domain.Product{
		Store:         store,
		StoreCategory: store,
		Name:          name,
		Brand:         brand,
		Category:      category,
		Description:   description,
		Price:         decimal.NewFromInt(1),
	}
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestNew_Empty(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	snap := c.Snapshot()
	assert.Equal(t, uint64(0), snap.Generation())
	assert.Equal(t, 0, snap.Len())
	assert.Empty(t, c.All())
	assert.Empty(t, snap.Match("milk"))
}

func TestReplace(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 5, 8, 12, 0, 0, 0, time.UTC)
	c := catalog.New(catalog.WithClock(func() time.Time { return fixed }))

	gen := c.Replace([]domain.Product{
		product("metro", "2% Milk", "Natrel", "Dairy", "4 L"),
		product("walmart", "Whole Wheat Bread", "Dempster's", "Bakery", "675 g"),
	})
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, fixed, c.Snapshot().RefreshedAt())
	assert.Equal(t, []string{"2% Milk", "Whole Wheat Bread"}, names(c.All()))

	gen = c.Replace([]domain.Product{product("metro", "Butter", "", "", "")})
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, []string{"Butter"}, names(c.All()))

	gen = c.Replace(nil)
	assert.Equal(t, uint64(3), gen)
	assert.Empty(t, c.All())
}

func TestSnapshot_IDUniqueAcrossCatalogs(t *testing.T) {
	t.Parallel()

	a := catalog.New()
	b := catalog.New()
	assert.NotEmpty(t, a.Snapshot().ID())
	assert.NotEqual(t, a.Snapshot().ID(), b.Snapshot().ID())

	a.Replace([]domain.Product{product("metro", "Milk", "", "", "")})
	b.Replace([]domain.Product{product("metro", "Milk", "", "", "")})
	require.Equal(t, a.Snapshot().Generation(), b.Snapshot().Generation())
	assert.NotEqual(t, a.Snapshot().ID(), b.Snapshot().ID())

	before := a.Snapshot().ID()
	a.Replace(nil)
	assert.NotEqual(t, before, a.Snapshot().ID())
}

func TestReplace_CopiesInput(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	input := []domain.Product{product("metro", "Butter", "", "", "")}
	c.Replace(input)

	input[0].Name = "Margarine"
	assert.Equal(t, []string{"Butter"}, names(c.All()))

	out := c.All()
	out[0].Name = "Lard"
	assert.Equal(t, []string{"Butter"}, names(c.All()))
}

func TestSnapshot_IsolatedFromReplace(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	c.Replace([]domain.Product{product("metro", "Butter", "", "", "")})

	pinned := c.Snapshot()
	c.Replace([]domain.Product{product("metro", "Cheese", "", "", "")})

	assert.Equal(t, []string{"Butter"}, names(pinned.Match("butter")))
	assert.Empty(t, pinned.Match("cheese"))
	assert.Equal(t, []string{"Cheese"}, names(c.Snapshot().Match("cheese")))
}

func TestSnapshot_Match(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	c.Replace([]domain.Product{
		product("metro", "2% Milk", "Natrel", "Dairy", "4 L"),
		product("walmart", "Chocolate Milk", "Neilson", "Dairy", "1 L"),
		product("freshco", "Whole Wheat Bread", "Dempster's", "Bakery", "675 g"),
		product("no frills", "Oat Beverage", "Oatly", "Plant Milk", "1.75 L"),
		product("metro", "Bananas", "", "Produce", "sold by the lb"),
	})
	snap := c.Snapshot()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "name match", term: "milk", want: []string{"2% Milk", "Chocolate Milk", "Oat Beverage"}},
		{name: "case insensitive", term: "MILK", want: []string{"2% Milk", "Chocolate Milk", "Oat Beverage"}},
		{name: "trimmed", term: "  bread  ", want: []string{"Whole Wheat Bread"}},
		{name: "brand match", term: "dempster", want: []string{"Whole Wheat Bread"}},
		{name: "category match", term: "produce", want: []string{"Bananas"}},
		{name: "description match", term: "sold by", want: []string{"Bananas"}},
		{name: "short term scans", term: "oa", want: []string{"Oat Beverage"}},
		{name: "substring inside word", term: "ocola", want: []string{"Chocolate Milk"}},
		{name: "no cross-field match", term: "milknatrel", want: []string{}},
		{name: "no match", term: "caviar", want: []string{}},
		{name: "empty term", term: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := snap.Match(tt.term)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSnapshot_MatchAgreesWithScan(t *testing.T) {
	t.Parallel()

	products := make([]domain.Product, 0, 200)
	for i := range 200 {
		products = append(products, product(
			"metro",
			fmt.Sprintf("Item %03d", i),
			fmt.Sprintf("Brand%d", i%7),
			fmt.Sprintf("Cat%d", i%5),
			fmt.Sprintf("%d g", i*10),
		))
	}

	c := catalog.New()
	c.Replace(products)
	snap := c.Snapshot()

	for _, term := range []string{"item 01", "brand3", "cat4", "50 g", "0 g", "item", "xyz"} {
		want := make([]string, 0)
		for _, p := range products {
			if containsFold(p, term) {
				want = append(want, p.Name)
			}
		}
		assert.Equal(t, want, names(snap.Match(term)), "term %q", term)
	}
}

func containsFold(p domain.Product, term string) bool {
	for _, f := range []string{p.Name, p.Brand, p.Category, p.Description} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func TestSnapshot_StoresAndCategories(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	c.Replace([]domain.Product{
		product("metro", "Milk", "", "Dairy", ""),
		product("metro", "Butter", "", "Dairy", ""),
		product("walmart", "Bread", "", "Bakery", ""),
		product("walmart", "Apples", "", "", ""),
	})
	snap := c.Snapshot()

	assert.Equal(t, []domain.StoreSummary{
		{StoreCategory: "metro", Products: 2},
		{StoreCategory: "walmart", Products: 2},
	}, snap.Stores())
	assert.Equal(t, []string{"Bakery", "Dairy"}, snap.Categories())
}

func TestCatalog_ConcurrentReplaceAndRead(t *testing.T) {
	t.Parallel()

	c := catalog.New()
	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				n := i*100 + j
				c.Replace([]domain.Product{
					product("metro", fmt.Sprintf("Milk %d", n), "", "", ""),
					product("metro", fmt.Sprintf("Milk %d b", n), "", "", ""),
				})
			}
		}()
	}

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				snap := c.Snapshot()
				got := snap.Match("milk")
				if snap.Generation() > 0 {
					assert.Len(t, got, 2)
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, uint64(400), c.Snapshot().Generation())
}
