package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
	flippMocks "github.com/donaldgifford/flyer-price-tracker/internal/flipp/mocks"
	"github.com/donaldgifford/flyer-price-tracker/internal/store"
	storeMocks "github.com/donaldgifford/flyer-price-tracker/internal/store/mocks"
	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

var testStores = map[string][]string{
	"metro":   {"metro"},
	"walmart": {"walmart"},
}

func flyersReq(q string) flipp.FlyersRequest {
	return flipp.FlyersRequest{PostalCode: "M5H2N2", Locale: "en-CA", Query: q}
}

func newTestEngine(c flipp.Client, s store.Store, opts ...Option) *Engine {
	base := []Option{
		WithLogger(logger.Nop()),
		WithLocation("M5H2N2", "en-CA"),
		WithStores(testStores),
	}
	return New(c, catalog.New(), s, append(base, opts...)...)
}

// expectDiscovery sets up the three discovery calls: local flyers plus one
// merchant query per tracked store.
func expectDiscovery(mc *flippMocks.MockClient, local, metro, walmart []flipp.Flyer) {
	mc.EXPECT().Flyers(mock.Anything, flyersReq("")).Return(local, nil).Once()
	mc.EXPECT().Flyers(mock.Anything, flyersReq("metro")).Return(metro, nil).Once()
	mc.EXPECT().Flyers(mock.Anything, flyersReq("walmart")).Return(walmart, nil).Once()
}

var (
	metroFlyer   = flipp.Flyer{ID: 1, MerchantName: "Metro", ValidFrom: "2025-05-08", ValidTo: "2025-05-14"}
	loblawsFlyer = flipp.Flyer{ID: 2, MerchantName: "Loblaws"}
	walmartFlyer = flipp.Flyer{ID: 3, MerchantName: "Walmart Supercentre"}
)

func metroItems() []flipp.Item {
	return []flipp.Item{
		{ID: 10, FlyerID: 1, Name: "Ground Beef", Description: "500 g", CurrentPrice: "5.99"},
		{ID: 11, FlyerID: 1, Name: "Mystery Deal", SaleStory: "SAVE 20%"},
	}
}

func walmartItems() []flipp.Item {
	return []flipp.Item{
		{ID: 30, FlyerID: 3, Name: "Milk 2%", Description: "4L", CurrentPrice: "4.99"},
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	eng := New(flippMocks.NewMockClient(t), catalog.New(), store.NewMemoryStore())
	assert.Equal(t, 4, eng.concurrency)
	assert.Equal(t, "en-CA", eng.locale)
	assert.Empty(t, eng.matcher.Categories())
	assert.NotNil(t, eng.normalizer)

	eng = New(flippMocks.NewMockClient(t), catalog.New(), store.NewMemoryStore(), WithConcurrency(-3))
	assert.Equal(t, 1, eng.concurrency)
}

func TestRefresh_Success(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc,
		[]flipp.Flyer{metroFlyer, loblawsFlyer},
		[]flipp.Flyer{metroFlyer},
		[]flipp.Flyer{walmartFlyer},
	)
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).Return(metroItems(), nil).Once()
	mc.EXPECT().FlyerItems(mock.Anything, int64(3)).Return(walmartItems(), nil).Once()

	ms := store.NewMemoryStore()
	eng := newTestEngine(mc, ms)

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusSucceeded, run.Status)
	assert.Equal(t, TriggerAPI, run.Trigger)
	assert.Equal(t, 2, run.Flyers)
	assert.Equal(t, 3, run.Items)
	assert.Equal(t, 2, run.Products)
	assert.Equal(t, 1, run.Dropped)
	assert.NotNil(t, run.CompletedAt)

	snap := eng.Catalog().Snapshot()
	assert.Equal(t, uint64(1), snap.Generation())
	products := snap.Products()
	require.Len(t, products, 2)

	beef := products[0]
	assert.Equal(t, "Ground Beef", beef.Name)
	assert.Equal(t, "Metro", beef.Store)
	assert.Equal(t, "metro", beef.StoreCategory)
	assert.Equal(t, "1.20", beef.UnitPrice.Decimal.StringFixed(2))
	assert.Equal(t, "https://flipp.com/en-ca/flyer/1/item/10", beef.ProductURL)
	require.NotNil(t, beef.ValidFrom)
	assert.Equal(t, "2025-05-08", beef.ValidFrom.Format("2006-01-02"))

	milk := products[1]
	assert.Equal(t, "walmart", milk.StoreCategory)
	assert.Equal(t, "0.12", milk.UnitPrice.Decimal.StringFixed(2))

	persisted, err := ms.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	runs, err := ms.ListRefreshRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Products)
}

func TestRefresh_SkipsFailedFlyer(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, []flipp.Flyer{metroFlyer, walmartFlyer}, nil, nil)
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).Return(metroItems(), nil).Once()
	mc.EXPECT().FlyerItems(mock.Anything, int64(3)).Return(nil, errors.New("status 503")).Once()

	eng := newTestEngine(mc, store.NewMemoryStore())

	run, err := eng.Refresh(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Flyers)
	assert.Equal(t, 2, run.Items)
	assert.Equal(t, 1, run.Products)
	assert.Equal(t, []string{"Ground Beef"}, names(eng.Catalog().All()))
}

func TestRefresh_PartialDiscoveryFailure(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	mc.EXPECT().Flyers(mock.Anything, flyersReq("")).Return(nil, errors.New("timeout")).Once()
	mc.EXPECT().Flyers(mock.Anything, flyersReq("metro")).Return([]flipp.Flyer{metroFlyer}, nil).Once()
	mc.EXPECT().Flyers(mock.Anything, flyersReq("walmart")).Return(nil, errors.New("timeout")).Once()
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).Return(metroItems(), nil).Once()

	eng := newTestEngine(mc, store.NewMemoryStore())

	run, err := eng.Refresh(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Products)
}

func TestRefresh_DiscoveryFailureKeepsCatalog(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	mc.EXPECT().Flyers(mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Times(3)

	ms := store.NewMemoryStore()
	eng := newTestEngine(mc, ms)
	eng.Catalog().Replace([]domain.Product{{Store: "Metro", Name: "Old Bread", Price: decimal.NewFromInt(3)}})

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovering flyers")
	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorText, "connection refused")

	assert.Equal(t, uint64(1), eng.Catalog().Snapshot().Generation())
	assert.Equal(t, []string{"Old Bread"}, names(eng.Catalog().All()))

	runs, err := ms.ListRefreshRuns(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
}

func TestRefresh_NoItems(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, []flipp.Flyer{loblawsFlyer}, nil, nil)

	eng := newTestEngine(mc, store.NewMemoryStore())

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.ErrorIs(t, err, ErrNoItems)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Zero(t, run.Flyers)
	assert.Equal(t, uint64(0), eng.Catalog().Snapshot().Generation())
}

func TestRefresh_CanceledDuringCollect(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, []flipp.Flyer{metroFlyer}, nil, []flipp.Flyer{walmartFlyer})
	cancelling := func(context.Context, int64) ([]flipp.Item, error) {
		cancel()
		return metroItems(), nil
	}
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).RunAndReturn(cancelling).Maybe()
	mc.EXPECT().FlyerItems(mock.Anything, int64(3)).RunAndReturn(cancelling).Maybe()

	eng := newTestEngine(mc, store.NewMemoryStore(), WithConcurrency(1))

	run, err := eng.Refresh(ctx, TriggerAPI)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "collecting items")
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Equal(t, 2, run.Flyers)
	assert.Equal(t, uint64(0), eng.Catalog().Snapshot().Generation())
}

func TestRefresh_AfterRefreshHook(t *testing.T) {
	t.Parallel()

	t.Run("runs after success with the new catalog", func(t *testing.T) {
		t.Parallel()

		mc := flippMocks.NewMockClient(t)
		expectDiscovery(mc, []flipp.Flyer{walmartFlyer}, nil, nil)
		mc.EXPECT().FlyerItems(mock.Anything, int64(3)).Return(walmartItems(), nil).Once()

		var (
			calls int
			gen   uint64
		)
		var eng *Engine
		eng = newTestEngine(mc, store.NewMemoryStore(), WithAfterRefresh(func(_ context.Context, run *domain.RefreshRun) {
			calls++
			gen = eng.Catalog().Snapshot().Generation()
			assert.Equal(t, domain.RunStatusSucceeded, run.Status)
		}))

		_, err := eng.Refresh(context.Background(), TriggerScheduled)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, uint64(1), gen)
	})

	t.Run("skipped on failure", func(t *testing.T) {
		t.Parallel()

		mc := flippMocks.NewMockClient(t)
		expectDiscovery(mc, nil, nil, nil)

		called := false
		eng := newTestEngine(mc, store.NewMemoryStore(), WithAfterRefresh(func(context.Context, *domain.RefreshRun) {
			called = true
		}))

		_, err := eng.Refresh(context.Background(), TriggerScheduled)
		require.ErrorIs(t, err, ErrNoItems)
		assert.False(t, called)
	})
}

func TestRefresh_FirstStoreOnly(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, []flipp.Flyer{metroFlyer, walmartFlyer}, nil, nil)
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).Return(metroItems(), nil).Once()

	eng := newTestEngine(mc, store.NewMemoryStore(), WithFirstStoreOnly(true))

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Flyers)
}

func TestRefresh_SearchTerms(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, nil, nil, nil)
	mc.EXPECT().
		SearchItems(mock.Anything, flipp.SearchRequest{PostalCode: "M5H2N2", Locale: "en-CA", Query: "eggs"}).
		Return([]flipp.Item{
			{ID: 1, FlyerID: 9, Name: "Eggs Large", MerchantName: "Walmart", CurrentPrice: "3.97"},
			{ID: 2, FlyerID: 8, Name: "Eggs Free Run", MerchantName: "Loblaws", CurrentPrice: "5.49"},
			{ID: 3, FlyerID: 9, Name: "Eggs Medium", MerchantName: "Walmart", CurrentPrice: "3.47"},
			{ID: 4, FlyerID: 7, Name: "Eggs Omega", MerchantName: "Metro", CurrentPrice: "6.49"},
		}, nil).Once()
	mc.EXPECT().
		SearchItems(mock.Anything, flipp.SearchRequest{PostalCode: "M5H2N2", Locale: "en-CA", Query: "milk"}).
		Return(nil, errors.New("status 500")).Once()

	eng := newTestEngine(mc, store.NewMemoryStore(), WithSearchTerms([]string{"eggs", "milk"}, 2))

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Items)

	products := eng.Catalog().All()
	assert.Equal(t, []string{"Eggs Large", "Eggs Medium"}, names(products))
	assert.Equal(t, "Walmart", products[0].Store)
	assert.Equal(t, "walmart", products[0].StoreCategory)
	assert.Equal(t, "https://flipp.com/en-ca/flyer/9/item/1", products[0].ProductURL)
}

func TestRefresh_InProgress(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(flippMocks.NewMockClient(t), store.NewMemoryStore())
	eng.running.Lock()
	defer eng.running.Unlock()

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.ErrorIs(t, err, ErrRefreshInProgress)
	assert.Nil(t, run)
}

func TestRefresh_PersistFailure(t *testing.T) {
	t.Parallel()

	mc := flippMocks.NewMockClient(t)
	expectDiscovery(mc, []flipp.Flyer{metroFlyer}, nil, nil)
	mc.EXPECT().FlyerItems(mock.Anything, int64(1)).Return(metroItems(), nil).Once()

	ms := storeMocks.NewMockStore(t)
	ms.EXPECT().InsertRefreshRun(mock.Anything, TriggerAPI).
		Return(&domain.RefreshRun{ID: "run-1", Trigger: TriggerAPI, Status: domain.RunStatusRunning}, nil).Once()
	ms.EXPECT().ReplaceProducts(mock.Anything, mock.MatchedBy(func(p []domain.Product) bool {
		return len(p) == 1
	})).Return(errors.New("disk full")).Once()
	ms.EXPECT().CompleteRefreshRun(mock.Anything, mock.MatchedBy(func(r *domain.RefreshRun) bool {
		return r.ID == "run-1" && r.Status == domain.RunStatusFailed
	})).Return(nil).Once()

	eng := newTestEngine(mc, ms)

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting products")
	assert.Equal(t, domain.RunStatusFailed, run.Status)

	// The in-memory catalog still serves the fresh data.
	assert.Equal(t, []string{"Ground Beef"}, names(eng.Catalog().All()))
}

func TestRefresh_RunRecordFailure(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	ms.EXPECT().InsertRefreshRun(mock.Anything, TriggerAPI).Return(nil, errors.New("db down")).Once()

	eng := newTestEngine(flippMocks.NewMockClient(t), ms)

	run, err := eng.Refresh(context.Background(), TriggerAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording refresh run")
	assert.Nil(t, run)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ms := store.NewMemoryStore()
	eng := newTestEngine(flippMocks.NewMockClient(t), ms)

	n, err := eng.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, uint64(0), eng.Catalog().Snapshot().Generation())

	require.NoError(t, ms.ReplaceProducts(ctx, []domain.Product{
		{Store: "Metro", Name: "Bread", Price: decimal.RequireFromString("2.49")},
	}))
	n, err = eng.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Bread"}, names(eng.Catalog().All()))

	failing := storeMocks.NewMockStore(t)
	failing.EXPECT().ListProducts(mock.Anything).Return(nil, errors.New("db down")).Once()
	_, err = newTestEngine(flippMocks.NewMockClient(t), failing).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading persisted products")
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
