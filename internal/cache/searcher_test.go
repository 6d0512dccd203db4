package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
	"github.com/donaldgifford/flyer-price-tracker/pkg/search"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func product(store, name, price string) domain.Product {
	return domain.Product{
		Store:         store,
		StoreCategory: store,
		Name:          name,
		Price:         decimal.RequireFromString(price),
	}
}

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Replace([]domain.Product{
		product("metro", "Milk 2% 4L", "5.49"),
		product("walmart", "Milk 1% 4L", "4.99"),
		product("metro", "Bread", "2.49"),
	})
	return cat
}

func TestSearcher_WithoutCache(t *testing.T) {
	t.Parallel()

	s := NewSearcher(testCatalog(), WithLogger(logger.Nop()))

	result, err := s.Search(context.Background(), domain.SearchQuery{Term: " milk "})
	require.NoError(t, err)
	assert.Equal(t, "milk", result.SearchTerm)
	assert.Equal(t, domain.SortByPrice, result.SortBy)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Milk 1% 4L", result.BestDeal().Name)

	result, err = s.Search(context.Background(), domain.SearchQuery{Term: "caviar"})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Zero(t, result.Count)
	assert.Nil(t, result.BestDeal())
}

func TestSearcher_InvalidQuery(t *testing.T) {
	t.Parallel()

	fake := newFakeCmdable()
	s := NewSearcher(testCatalog(), WithCache(&Cache{store: fake}), WithLogger(logger.Nop()))

	_, err := s.Search(context.Background(), domain.SearchQuery{Term: "   "})
	require.ErrorIs(t, err, search.ErrEmptyTerm)

	_, err = s.Search(context.Background(), domain.SearchQuery{Term: "milk", SortBy: "rating"})
	require.ErrorIs(t, err, search.ErrInvalidQuery)

	assert.Zero(t, fake.gets, "invalid queries never reach the cache")
}

func TestSearcher_CachesBySnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeCmdable()
	cat := testCatalog()
	s := NewSearcher(cat, WithCache(&Cache{store: fake}), WithLogger(logger.Nop()))

	first, err := s.Search(ctx, domain.SearchQuery{Term: "milk"})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.sets)
	assert.Contains(t, fake.data, "fpt:search:"+cat.Snapshot().ID()+":price:0::milk")

	second, err := s.Search(ctx, domain.SearchQuery{Term: "MILK"})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.sets, "second lookup is served from cache")
	assert.Equal(t, "MILK", second.SearchTerm)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, first.BestDeal().Name, second.BestDeal().Name)

	cat.Replace([]domain.Product{product("freshco", "Milk 3.25% 4L", "4.79")})

	third, err := s.Search(ctx, domain.SearchQuery{Term: "milk"})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.sets)
	assert.Equal(t, uint64(2), third.Generation)
	assert.Equal(t, "Milk 3.25% 4L", third.BestDeal().Name)
}

func TestSearcher_CatalogsSharingCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeCmdable()

	older := catalog.New()
	older.Replace([]domain.Product{product("metro", "Milk old", "5.49")})
	newer := catalog.New()
	newer.Replace([]domain.Product{product("metro", "Milk new", "4.49")})
	require.Equal(t, older.Snapshot().Generation(), newer.Snapshot().Generation())

	a := NewSearcher(older, WithCache(&Cache{store: fake}), WithLogger(logger.Nop()))
	b := NewSearcher(newer, WithCache(&Cache{store: fake}), WithLogger(logger.Nop()))

	first, err := a.Search(ctx, domain.SearchQuery{Term: "milk"})
	require.NoError(t, err)
	assert.Equal(t, "Milk old", first.BestDeal().Name)

	second, err := b.Search(ctx, domain.SearchQuery{Term: "milk"})
	require.NoError(t, err)
	assert.Equal(t, "Milk new", second.BestDeal().Name)
	assert.Equal(t, 2, fake.sets)
}

func TestSearcher_CacheFailuresFallThrough(t *testing.T) {
	t.Parallel()

	fake := newFakeCmdable()
	fake.getErr = errors.New("connection refused")
	fake.setErr = errors.New("connection refused")
	s := NewSearcher(testCatalog(), WithCache(&Cache{store: fake}), WithLogger(logger.Nop()))

	result, err := s.Search(context.Background(), domain.SearchQuery{Term: "bread"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, fake.gets)
	assert.Equal(t, 1, fake.sets)
}
