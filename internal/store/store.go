// Package store defines the datastore abstraction for flyer-price-tracker.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines all data access operations for flyer-price-tracker.
type Store interface {
	// Products
	ReplaceProducts(ctx context.Context, products []domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// Refresh runs
	InsertRefreshRun(ctx context.Context, trigger string) (*domain.RefreshRun, error)
	CompleteRefreshRun(ctx context.Context, run *domain.RefreshRun) error
	ListRefreshRuns(ctx context.Context, limit int) ([]domain.RefreshRun, error)
	RecoverStaleRefreshRuns(ctx context.Context, olderThan time.Duration) (int, error)

	// Scheduler
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
