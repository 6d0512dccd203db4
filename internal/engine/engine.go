// Package engine orchestrates catalog refreshes: flyer discovery, item
// collection, normalization, the catalog swap and persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
	"github.com/donaldgifford/flyer-price-tracker/internal/store"
	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	"github.com/donaldgifford/flyer-price-tracker/pkg/extract"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const tracerName = "github.com/donaldgifford/flyer-price-tracker/internal/engine"

// Refresh triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerStartup   = "startup"
	TriggerAPI       = "api"
	TriggerCLI       = "cli"
)

var (
	// ErrRefreshInProgress is returned when a refresh is requested while
	// another one is running.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrNoItems is returned when a refresh collects no raw items. The
	// previous catalog is kept.
	ErrNoItems = errors.New("no flyer items collected")
)

// Engine refreshes the catalog from the Flipp API.
type Engine struct {
	client     flipp.Client
	catalog    *catalog.Catalog
	store      store.Store
	normalizer *extract.Normalizer
	matcher    *flipp.StoreMatcher
	log        *slog.Logger
	tracer     trace.Tracer

	postalCode     string
	locale         string
	webURL         string
	searchTerms    []string
	perTermLimit   int
	concurrency    int
	firstStoreOnly bool
	afterRefresh   []func(context.Context, *domain.RefreshRun)

	running sync.Mutex
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithLocation sets the postal code and locale flyers are fetched for.
func WithLocation(postalCode, locale string) Option {
	return func(e *Engine) {
		e.postalCode = postalCode
		e.locale = locale
	}
}

// WithStores sets the tracked store categories and their merchant-name variants.
func WithStores(stores map[string][]string) Option {
	return func(e *Engine) {
		e.matcher = flipp.NewStoreMatcher(stores)
	}
}

// WithFirstStoreOnly limits each refresh to the first matching flyer.
func WithFirstStoreOnly(v bool) Option {
	return func(e *Engine) {
		e.firstStoreOnly = v
	}
}

// WithWebURL sets the public site root used to build product links.
func WithWebURL(u string) Option {
	return func(e *Engine) {
		e.webURL = u
	}
}

// WithSearchTerms enables item search for terms, keeping the first
// perTermLimit tracked-store results of each.
func WithSearchTerms(terms []string, perTermLimit int) Option {
	return func(e *Engine) {
		e.searchTerms = terms
		e.perTermLimit = perTermLimit
	}
}

// WithConcurrency bounds the number of concurrent Flipp requests.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithNormalizer overrides the normalizer.
func WithNormalizer(n *extract.Normalizer) Option {
	return func(e *Engine) {
		e.normalizer = n
	}
}

// WithTracerProvider sets the tracer provider used for refresh spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// WithAfterRefresh registers fn to run after every successful refresh, once
// the new catalog is in place.
func WithAfterRefresh(fn func(context.Context, *domain.RefreshRun)) Option {
	return func(e *Engine) {
		e.afterRefresh = append(e.afterRefresh, fn)
	}
}

// New creates an Engine that refreshes cat from client and records runs in s.
func New(client flipp.Client, cat *catalog.Catalog, s store.Store, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		catalog:     cat,
		store:       s,
		log:         slog.Default(),
		tracer:      otel.Tracer(tracerName),
		locale:      "en-CA",
		webURL:      "https://flipp.com/en-ca",
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = flipp.NewStoreMatcher(nil)
	}
	if e.normalizer == nil {
		e.normalizer = extract.NewNormalizer(extract.WithLogger(e.log))
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// Catalog returns the catalog the engine refreshes.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Load replaces the catalog with the persisted snapshot, if there is one.
// It returns the number of products loaded.
func (e *Engine) Load(ctx context.Context) (int, error) {
	products, err := e.store.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading persisted products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	gen := e.catalog.Replace(products)
	e.syncCatalogMetrics()
	e.log.Info("catalog loaded from store", "products", len(products), "generation", gen)
	return len(products), nil
}

// Refresh fetches all tracked flyers, normalizes their items and swaps them
// into the catalog. The run is recorded in the store whatever the outcome.
// On failure the previous catalog stays in place.
func (e *Engine) Refresh(ctx context.Context, trigger string) (*domain.RefreshRun, error) {
	if !e.running.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer e.running.Unlock()

	ctx, span := e.tracer.Start(ctx, "engine.Refresh",
		trace.WithAttributes(attribute.String("fpt.trigger", trigger)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	}()

	run, err := e.store.InsertRefreshRun(ctx, trigger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recording refresh run")
		metrics.RefreshErrorsTotal.Inc()
		return nil, fmt.Errorf("recording refresh run: %w", err)
	}

	refreshErr := e.refresh(ctx, run)
	if refreshErr != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorText = refreshErr.Error()
		metrics.RefreshErrorsTotal.Inc()
		span.RecordError(refreshErr)
		span.SetStatus(codes.Error, "refresh failed")
		e.log.Error("refresh failed", "trigger", trigger, "run_id", run.ID, "error", refreshErr)
	} else {
		run.Status = domain.RunStatusSucceeded
	}

	span.SetAttributes(
		attribute.Int("fpt.flyers", run.Flyers),
		attribute.Int("fpt.items", run.Items),
		attribute.Int("fpt.products", run.Products),
		attribute.Int("fpt.dropped", run.Dropped),
	)

	// Record the outcome even if the caller gave up.
	if err := e.store.CompleteRefreshRun(context.WithoutCancel(ctx), run); err != nil {
		e.log.Error("completing refresh run failed", "run_id", run.ID, "error", err)
	}

	if refreshErr != nil {
		return run, refreshErr
	}
	e.log.Info("refresh complete",
		"trigger", trigger,
		"run_id", run.ID,
		"flyers", run.Flyers,
		"items", run.Items,
		"products", run.Products,
		"dropped", run.Dropped,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	for _, fn := range e.afterRefresh {
		fn(ctx, run)
	}
	return run, nil
}

func (e *Engine) refresh(ctx context.Context, run *domain.RefreshRun) error {
	c, err := e.collect(ctx)
	run.Flyers = c.flyers
	run.Items = len(c.items)
	if err != nil {
		return err
	}
	if len(c.items) == 0 {
		return ErrNoItems
	}

	products, stats := e.normalizer.Normalize(c.items)
	recordNormalizeMetrics(stats)
	run.Products = len(products)
	run.Dropped = stats.Dropped()

	gen := e.catalog.Replace(products)
	e.syncCatalogMetrics()
	e.log.Debug("catalog replaced", "generation", gen, "products", len(products))

	if err := e.store.ReplaceProducts(ctx, products); err != nil {
		return fmt.Errorf("persisting products: %w", err)
	}
	return nil
}

func (e *Engine) syncCatalogMetrics() {
	snap := e.catalog.Snapshot()
	metrics.CatalogProducts.Set(float64(snap.Len()))
	metrics.CatalogGeneration.Set(float64(snap.Generation()))
	metrics.CatalogLastRefreshTimestamp.Set(float64(snap.RefreshedAt().Unix()))
}

func recordNormalizeMetrics(stats extract.Stats) {
	metrics.NormalizeItemsTotal.Add(float64(stats.Received))
	metrics.NormalizeDroppedTotal.WithLabelValues("invalid").Add(float64(stats.Invalid))
	metrics.NormalizeDroppedTotal.WithLabelValues("unpriced").Add(float64(stats.Unpriced))
	metrics.NormalizeDroppedTotal.WithLabelValues("failed").Add(float64(stats.Failed))
	for rule, n := range stats.Rules {
		metrics.NormalizeQuantityRuleTotal.WithLabelValues(rule).Add(float64(n))
	}
	metrics.NormalizeMissingUnitPriceTotal.Add(float64(stats.WithoutUnitPrice))
}
