package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	"github.com/donaldgifford/flyer-price-tracker/pkg/search"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const tracerName = "github.com/donaldgifford/flyer-price-tracker/internal/cache"

// Searcher runs catalog searches, consulting the cache first when one is
// configured. Cache failures are logged and the search falls through to
// the catalog.
type Searcher struct {
	source search.Source
	cache  *Cache
	log    *slog.Logger
	tracer trace.Tracer
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithCache enables result caching.
func WithCache(c *Cache) SearcherOption {
	return func(s *Searcher) {
		s.cache = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		s.log = l
	}
}

// WithTracerProvider sets the tracer provider used for search spans.
func WithTracerProvider(tp trace.TracerProvider) SearcherOption {
	return func(s *Searcher) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// NewSearcher creates a Searcher over src.
func NewSearcher(src search.Source, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		source: src,
		log:    slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search validates q and returns its ranked results. Results[0] is the best
// deal; an empty Results slice is not an error.
func (s *Searcher) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	q, err := search.Normalize(q)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("fpt.search_term", q.Term),
		attribute.String("fpt.sort_by", string(q.SortBy)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.SearchRequestsTotal.WithLabelValues(string(q.SortBy)).Inc()

	// Pin one snapshot so the cache key and the results agree.
	snap := s.source.Snapshot()
	key := SearchKey(snap.ID(), q)

	if result, ok := s.cached(ctx, key); ok {
		result.SearchTerm = q.Term
		span.SetAttributes(attribute.Bool("fpt.cache_hit", true), attribute.Int("fpt.count", result.Count))
		recordEmpty(result)
		return result, nil
	}

	result, err := search.Search(pinned{snap}, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("fpt.cache_hit", false), attribute.Int("fpt.count", result.Count))
	recordEmpty(result)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			metrics.SearchCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn("caching search result failed", "key", key, "error", err)
		}
	}
	return result, nil
}

func (s *Searcher) cached(ctx context.Context, key string) (*domain.SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	result, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		return result, true
	case errors.Is(err, ErrMiss):
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.SearchCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn("search cache lookup failed", "key", key, "error", err)
	}
	return nil, false
}

func recordEmpty(r *domain.SearchResult) {
	if r.Count == 0 {
		metrics.SearchEmptyResultsTotal.Inc()
	}
}

// pinned serves a single snapshot.
type pinned struct {
	snap *catalog.Snapshot
}

func (p pinned) Snapshot() *catalog.Snapshot { return p.snap }
