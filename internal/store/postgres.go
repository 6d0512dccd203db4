package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling. The
// pool size comes from pool_max_conns in the connection string when present.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// ReplaceProducts swaps the stored snapshot for products in one transaction,
// preserving their order.
func (s *PostgresStore) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryDeleteProducts); err != nil {
			return fmt.Errorf("clearing products: %w", err)
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"products"},
			productColumns,
			pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
				return productRow(i, &products[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying products: %w", err)
		}
		if int(n) != len(products) {
			return fmt.Errorf("copying products: wrote %d of %d rows", n, len(products))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing products: %w", err)
	}
	return nil
}

func productRow(position int, p *domain.Product) []any {
	return []any{
		position, p.Store, p.StoreCategory, p.Name, p.Description, p.Brand, p.Category,
		toNumeric(p.Price), toNullNumeric(p.Quantity), string(p.Unit), toNullNumeric(p.UnitPrice),
		p.PrePriceText, p.PostPriceText, p.SaleStory,
		p.ValidFrom, p.ValidTo, p.ProductURL,
	}
}

// ListProducts returns the stored snapshot in its original order.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, queryListProducts)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scanning products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var (
		p                          domain.Product
		unit                       string
		price, quantity, unitPrice pgtype.Numeric
	)
	if err := row.Scan(
		&p.Store, &p.StoreCategory, &p.Name, &p.Description, &p.Brand, &p.Category,
		&price, &quantity, &unit, &unitPrice,
		&p.PrePriceText, &p.PostPriceText, &p.SaleStory,
		&p.ValidFrom, &p.ValidTo, &p.ProductURL,
	); err != nil {
		return p, err
	}

	p.Price = fromNumeric(price).Decimal
	p.Quantity = fromNumeric(quantity)
	p.Unit = domain.Unit(unit)
	p.UnitPrice = fromNumeric(unitPrice)
	return p, nil
}

// InsertRefreshRun records the start of a refresh and returns the new run.
func (s *PostgresStore) InsertRefreshRun(ctx context.Context, trigger string) (*domain.RefreshRun, error) {
	run := &domain.RefreshRun{Trigger: trigger}
	if err := s.pool.QueryRow(ctx, queryInsertRefreshRun, trigger).Scan(
		&run.ID, &run.StartedAt, &run.Status,
	); err != nil {
		return nil, fmt.Errorf("inserting refresh run: %w", err)
	}
	return run, nil
}

// CompleteRefreshRun stores the outcome of a run and sets its CompletedAt.
func (s *PostgresStore) CompleteRefreshRun(ctx context.Context, run *domain.RefreshRun) error {
	args := pgx.NamedArgs{
		"id":         run.ID,
		"status":     run.Status,
		"error_text": run.ErrorText,
		"flyers":     run.Flyers,
		"items":      run.Items,
		"products":   run.Products,
		"dropped":    run.Dropped,
	}

	var completedAt time.Time
	err := s.pool.QueryRow(ctx, queryCompleteRefreshRun, args).Scan(&completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("completing refresh run %s: %w", run.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("completing refresh run: %w", err)
	}
	run.CompletedAt = &completedAt
	return nil
}

// ListRefreshRuns returns the most recent runs, newest first.
func (s *PostgresStore) ListRefreshRuns(ctx context.Context, limit int) ([]domain.RefreshRun, error) {
	rows, err := s.pool.Query(ctx, queryListRefreshRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RefreshRun, error) {
		var r domain.RefreshRun
		err := row.Scan(
			&r.ID, &r.Trigger, &r.StartedAt, &r.CompletedAt, &r.Status,
			&r.ErrorText, &r.Flyers, &r.Items, &r.Products, &r.Dropped,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning refresh run: %w", err)
	}
	return runs, nil
}

// RecoverStaleRefreshRuns marks 'running' rows older than olderThan as failed,
// then deletes all rows older than 30 days. Returns the number of rows marked.
func (s *PostgresStore) RecoverStaleRefreshRuns(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, queryMarkStaleRefreshRunsFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("marking stale refresh runs failed: %w", err)
	}
	affected := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldRefreshRuns); err != nil {
		return affected, fmt.Errorf("deleting old refresh runs: %w", err)
	}

	return affected, nil
}

// AcquireSchedulerLock attempts to acquire a distributed lock for the given job.
// Returns true if the lock was acquired, false if another holder already owns it.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	expiresAt := time.Now().Add(ttl)

	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, expiresAt).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(ctx context.Context, jobName, holder string) error {
	if _, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder); err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}
