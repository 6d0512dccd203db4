//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/flyer-price-tracker/internal/store"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fpt_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testProducts() []domain.Product {
	validFrom := time.Date(2025, 5, 8, 4, 0, 0, 0, time.UTC)
	return []domain.Product{
		{
			Store:         "Metro",
			StoreCategory: "metro",
			Name:          "Lean Ground Beef",
			Description:   "500 g",
			Brand:         "Butcher's Choice",
			Category:      "Meat",
			Price:         decimal.RequireFromString("5.99"),
			Quantity:      decimal.NewNullDecimal(decimal.NewFromInt(500)),
			Unit:          domain.UnitG,
			UnitPrice:     decimal.NewNullDecimal(decimal.RequireFromString("1.20")),
			SaleStory:     "SAVE $2",
			ValidFrom:     &validFrom,
			ProductURL:    "https://flipp.com/en-ca/flyer/101/item/9001",
		},
		{
			Store:         "No Frills",
			StoreCategory: "no frills",
			Name:          "Bananas",
			Price:         decimal.RequireFromString("0.69"),
			PostPriceText: "/lb",
		},
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_ReplaceProducts(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	want := testProducts()
	require.NoError(t, s.ReplaceProducts(ctx, want))

	got, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Lean Ground Beef", got[0].Name)
	assert.Equal(t, "5.99", got[0].Price.StringFixed(2))
	require.True(t, got[0].Quantity.Valid)
	assert.True(t, got[0].Quantity.Decimal.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, domain.UnitG, got[0].Unit)
	assert.Equal(t, "1.20", got[0].UnitPrice.Decimal.StringFixed(2))
	require.NotNil(t, got[0].ValidFrom)
	assert.True(t, want[0].ValidFrom.Equal(*got[0].ValidFrom))
	assert.Nil(t, got[0].ValidTo)

	assert.Equal(t, "Bananas", got[1].Name)
	assert.False(t, got[1].Quantity.Valid)
	assert.False(t, got[1].UnitPrice.Valid)
	assert.Equal(t, domain.UnitNone, got[1].Unit)

	// A second replace swaps the whole snapshot.
	require.NoError(t, s.ReplaceProducts(ctx, want[1:]))
	got, err = s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bananas", got[0].Name)
}

func TestPostgresStore_RefreshRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	run, err := s.InsertRefreshRun(ctx, "api")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, domain.RunStatusRunning, run.Status)

	run.Status = domain.RunStatusSucceeded
	run.Flyers = 5
	run.Items = 1200
	run.Products = 1150
	run.Dropped = 50
	require.NoError(t, s.CompleteRefreshRun(ctx, run))
	require.NotNil(t, run.CompletedAt)

	runs, err := s.ListRefreshRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "api", runs[0].Trigger)
	assert.Equal(t, 1150, runs[0].Products)
	assert.Equal(t, 50, runs[0].Dropped)
	assert.Empty(t, runs[0].ErrorText)

	err = s.CompleteRefreshRun(ctx, &domain.RefreshRun{
		ID:     "00000000-0000-0000-0000-000000000000",
		Status: domain.RunStatusFailed,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_RecoverStaleRefreshRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.InsertRefreshRun(ctx, "scheduled")
	require.NoError(t, err)

	n, err := s.RecoverStaleRefreshRuns(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.RecoverStaleRefreshRuns(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := s.ListRefreshRuns(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "interrupted", runs[0].ErrorText)
}

func TestPostgresStore_SchedulerLock(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	ok, err := s.AcquireSchedulerLock(ctx, "refresh", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcquireSchedulerLock(ctx, "refresh", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ReleaseSchedulerLock(ctx, "refresh", "a"))

	ok, err = s.AcquireSchedulerLock(ctx, "refresh", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
