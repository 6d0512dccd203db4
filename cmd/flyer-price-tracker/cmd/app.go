package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/donaldgifford/flyer-price-tracker/internal/cache"
	"github.com/donaldgifford/flyer-price-tracker/internal/config"
	"github.com/donaldgifford/flyer-price-tracker/internal/engine"
	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
	"github.com/donaldgifford/flyer-price-tracker/internal/notify"
	"github.com/donaldgifford/flyer-price-tracker/internal/store"
	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	"github.com/donaldgifford/flyer-price-tracker/pkg/extract"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// app holds the wired components shared by serve and scrape.
type app struct {
	store    store.Store
	catalog  *catalog.Catalog
	engine   *engine.Engine
	cache    *cache.Cache
	searcher *cache.Searcher

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger, withCache bool) (*app, error) {
	a := &app{catalog: catalog.New()}

	if cfg.Database.Enabled() {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.store = pg
		log.Info("using postgres store", "host", cfg.Database.Host, "database", cfg.Database.Name)
	} else {
		a.store = store.NewMemoryStore()
		log.Info("no database configured; catalog is kept in memory only")
	}

	client := flipp.NewHTTPClient(
		flipp.WithBaseURL(cfg.Flipp.BaseURL),
		flipp.WithTimeout(cfg.Flipp.Timeout),
		flipp.WithRateLimiter(flipp.NewRateLimiter(cfg.Flipp.RateLimit.PerSecond, cfg.Flipp.RateLimit.Burst)),
	)

	searchOpts := []cache.SearcherOption{
		cache.WithLogger(logger.Component(log, "search")),
		cache.WithTracerProvider(otel.GetTracerProvider()),
	}
	if withCache && cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting search cache: %w", err)
		}
		a.cache = c
		a.closers = append(a.closers, func() { _ = c.Close() })
		searchOpts = append(searchOpts, cache.WithCache(c))
		log.Info("search cache enabled", "ttl", cfg.Cache.TTL)
	}
	a.searcher = cache.NewSearcher(a.catalog, searchOpts...)

	alerter, err := newAlerter(cfg.Alerts, a.searcher, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger.Component(log, "engine")),
		engine.WithLocation(cfg.Flipp.PostalCode, cfg.Flipp.Locale),
		engine.WithStores(cfg.Flipp.Stores),
		engine.WithFirstStoreOnly(cfg.Flipp.FirstStoreOnly),
		engine.WithWebURL(cfg.Flipp.WebURL),
		engine.WithSearchTerms(cfg.Flipp.SearchTerms, cfg.Flipp.PerTermLimit),
		engine.WithConcurrency(cfg.Flipp.Concurrency),
		engine.WithNormalizer(extract.NewNormalizer(extract.WithLogger(logger.Component(log, "normalize")))),
		engine.WithTracerProvider(otel.GetTracerProvider()),
	}
	if alerter != nil {
		engineOpts = append(engineOpts, engine.WithAfterRefresh(func(ctx context.Context, _ *domain.RefreshRun) {
			alerter.NotifyDeals(ctx)
		}))
	}
	a.engine = engine.New(client, a.catalog, a.store, engineOpts...)

	return a, nil
}

func newAlerter(cfg config.AlertsConfig, s notify.Searcher, log *slog.Logger) (*notify.Alerter, error) {
	if len(cfg.Watches) == 0 {
		return nil, nil
	}

	alertLog := logger.Component(log, "alerts")
	var n notify.Notifier = notify.NewNoOpNotifier(alertLog)
	if cfg.WebhookURL != "" {
		n = notify.NewDiscordNotifier(cfg.WebhookURL, notify.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	}

	watches := make([]notify.Watch, 0, len(cfg.Watches))
	for _, w := range cfg.Watches {
		watch := notify.Watch{
			Name: w.Name,
			Query: domain.SearchQuery{
				Term:   w.Term,
				SortBy: domain.SortBy(w.SortBy),
				Stores: w.Stores,
				Limit:  w.Limit,
			},
		}
		if w.MaxUnitPrice != "" {
			limit, err := decimal.NewFromString(w.MaxUnitPrice)
			if err != nil {
				return nil, fmt.Errorf("parsing max_unit_price for watch %q: %w", w.Name, err)
			}
			watch.MaxUnitPrice = decimal.NewNullDecimal(limit)
		}
		watches = append(watches, watch)
	}

	alertLog.Info("deal alerts enabled", "watches", len(watches), "webhook", cfg.WebhookURL != "")
	return notify.NewAlerter(s, n, watches, alertLog), nil
}
