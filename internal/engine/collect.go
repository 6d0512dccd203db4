package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

type trackedFlyer struct {
	flyer         flipp.Flyer
	storeCategory string
}

type collection struct {
	flyers int
	items  []domain.RawItem
}

// collect gathers raw items from every tracked flyer and, when configured,
// from item search. Individual flyer and term failures are logged and
// skipped.
func (e *Engine) collect(ctx context.Context) (collection, error) {
	ctx, span := e.tracer.Start(ctx, "engine.collect")
	defer span.End()

	flyers, err := e.discoverFlyers(ctx)
	if err != nil {
		return collection{}, err
	}

	perFlyer := make([][]domain.RawItem, len(flyers))
	perTerm := make([][]domain.RawItem, len(e.searchTerms))

	// Fetch failures are logged per flyer or term; only cancellation fails
	// the group.
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range flyers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perFlyer[i] = e.fetchFlyer(ctx, &flyers[i])
			return ctx.Err()
		})
	}
	for i, term := range e.searchTerms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perTerm[i] = e.searchTerm(ctx, term)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return collection{flyers: len(flyers)}, fmt.Errorf("collecting items: %w", err)
	}

	c := collection{flyers: len(flyers)}
	for _, items := range perFlyer {
		c.items = append(c.items, items...)
	}
	for _, items := range perTerm {
		c.items = append(c.items, items...)
	}

	span.SetAttributes(
		attribute.Int("fpt.flyers", c.flyers),
		attribute.Int("fpt.items", len(c.items)),
	)
	return c, nil
}

// discoverFlyers lists local flyers plus a merchant query per tracked store,
// dedupes them by ID and keeps those that match a tracked store. It fails
// only when every discovery request failed.
func (e *Engine) discoverFlyers(ctx context.Context) ([]trackedFlyer, error) {
	queries := append([]string{""}, e.matcher.Categories()...)

	var (
		all  []flipp.Flyer
		errs []error
	)
	for _, q := range queries {
		flyers, err := e.client.Flyers(ctx, flipp.FlyersRequest{
			PostalCode: e.postalCode,
			Locale:     e.locale,
			Query:      q,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("discovering flyers: %w", ctx.Err())
			}
			e.log.Warn("flyer discovery failed", "query", q, "error", err)
			errs = append(errs, err)
			continue
		}
		all = append(all, flyers...)
	}
	if len(errs) == len(queries) {
		return nil, fmt.Errorf("discovering flyers: %w", errors.Join(errs...))
	}

	seen := make(map[int64]bool, len(all))
	var tracked []trackedFlyer
	for _, f := range all {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true

		category, ok := e.matcher.MatchFlyer(&f)
		if !ok {
			continue
		}
		tracked = append(tracked, trackedFlyer{flyer: f, storeCategory: category})
	}

	if e.firstStoreOnly && len(tracked) > 1 {
		tracked = tracked[:1]
	}

	e.log.Info("flyers discovered",
		"seen", len(seen),
		"tracked", len(tracked),
		"stores", storeCategories(tracked),
	)
	return tracked, nil
}

func (e *Engine) fetchFlyer(ctx context.Context, tf *trackedFlyer) []domain.RawItem {
	ctx, span := e.tracer.Start(ctx, "engine.fetchFlyer", trace.WithAttributes(
		attribute.Int64("fpt.flyer_id", tf.flyer.ID),
		attribute.String("fpt.store_category", tf.storeCategory),
	))
	defer span.End()

	items, err := e.client.FlyerItems(ctx, tf.flyer.ID)
	if err != nil {
		span.RecordError(err)
		metrics.RefreshFlyerErrorsTotal.Inc()
		e.log.Warn("skipping flyer",
			"flyer_id", tf.flyer.ID,
			"merchant", tf.flyer.MerchantName,
			"error", err,
		)
		return nil
	}

	e.log.Debug("flyer fetched",
		"flyer_id", tf.flyer.ID,
		"merchant", tf.flyer.MerchantName,
		"items", len(items),
	)
	return flipp.ToRawItems(items, flipp.OriginFromFlyer(&tf.flyer, tf.storeCategory), e.webURL)
}

// searchTerm runs an item search and keeps the first perTermLimit results
// from tracked stores.
func (e *Engine) searchTerm(ctx context.Context, term string) []domain.RawItem {
	items, err := e.client.SearchItems(ctx, flipp.SearchRequest{
		PostalCode: e.postalCode,
		Locale:     e.locale,
		Query:      term,
	})
	if err != nil {
		e.log.Warn("item search failed", "term", term, "error", err)
		return nil
	}

	var raw []domain.RawItem
	for i := range items {
		if e.perTermLimit > 0 && len(raw) >= e.perTermLimit {
			break
		}
		category, ok := e.matcher.Match(items[i].MerchantName)
		if !ok {
			continue
		}
		raw = append(raw, flipp.ToRawItems(items[i:i+1], flipp.Origin{StoreCategory: category}, e.webURL)...)
	}
	return raw
}

func storeCategories(flyers []trackedFlyer) []string {
	out := make([]string, 0, len(flyers))
	for _, f := range flyers {
		out = append(out, f.storeCategory)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
