package store

// SQL query constants organized by entity.
// All SQL lives here. PostgresStore methods reference these constants.

// Product queries.
const (
	queryDeleteProducts = `DELETE FROM products`

	queryListProducts = `
		SELECT store, store_category, product_name, description, brand, category,
			price, quantity, unit, unit_price,
			pre_price_text, post_price_text, sale_story,
			valid_from, valid_to, product_url
		FROM products
		ORDER BY position`
)

// productColumns is the CopyFrom column order for the products table.
var productColumns = []string{
	"position", "store", "store_category", "product_name", "description", "brand", "category",
	"price", "quantity", "unit", "unit_price",
	"pre_price_text", "post_price_text", "sale_story",
	"valid_from", "valid_to", "product_url",
}

// Refresh run queries.
const (
	queryInsertRefreshRun = `
		INSERT INTO refresh_runs (trigger)
		VALUES ($1)
		RETURNING id, started_at, status`

	queryCompleteRefreshRun = `
		UPDATE refresh_runs SET
			completed_at = now(),
			status       = @status,
			error_text   = NULLIF(@error_text, ''),
			flyers       = @flyers,
			items        = @items,
			products     = @products,
			dropped      = @dropped
		WHERE id = @id
		RETURNING completed_at`

	queryListRefreshRuns = `
		SELECT id, trigger, started_at, completed_at, status,
			COALESCE(error_text, ''), flyers, items, products, dropped
		FROM refresh_runs
		ORDER BY started_at DESC
		LIMIT $1`

	queryMarkStaleRefreshRunsFailed = `
		UPDATE refresh_runs SET
			status       = 'failed',
			error_text   = 'interrupted',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldRefreshRuns = `
		DELETE FROM refresh_runs WHERE started_at < now() - interval '30 days'`
)

// Scheduler lock queries.
const (
	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
				OR scheduler_locks.lock_holder = EXCLUDED.lock_holder
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)
