package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Searcher runs product searches against the catalog.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
}

// Watch is a search whose best deals are announced after every refresh.
// Products above MaxUnitPrice, or without a unit price when it is set, are
// left out.
type Watch struct {
	Name         string
	Query        domain.SearchQuery
	MaxUnitPrice decimal.NullDecimal
}

// Alerter announces the best deals for each watch.
type Alerter struct {
	searcher Searcher
	notifier Notifier
	watches  []Watch
	log      *slog.Logger
}

// NewAlerter creates an Alerter.
func NewAlerter(s Searcher, n Notifier, watches []Watch, log *slog.Logger) *Alerter {
	return &Alerter{searcher: s, notifier: n, watches: watches, log: log}
}

// NotifyDeals searches every watch and sends its top results as one batch.
// Failures are logged per watch and never stop the remaining watches.
func (a *Alerter) NotifyDeals(ctx context.Context) {
	for _, w := range a.watches {
		alerts, err := a.alertsFor(ctx, w)
		if err != nil {
			metrics.AlertsTotal.WithLabelValues("error").Inc()
			a.log.Warn("deal alert search failed", "watch", w.Name, "error", err)
			continue
		}
		if len(alerts) == 0 {
			a.log.Debug("no deals for watch", "watch", w.Name)
			continue
		}

		if err := a.notifier.SendBatchAlert(ctx, alerts, w.Name); err != nil {
			metrics.AlertsTotal.WithLabelValues("error").Inc()
			a.log.Warn("sending deal alert failed", "watch", w.Name, "error", err)
			continue
		}
		metrics.AlertsTotal.WithLabelValues("sent").Add(float64(len(alerts)))
		a.log.Info("deal alert sent", "watch", w.Name, "deals", len(alerts))
	}
}

func (a *Alerter) alertsFor(ctx context.Context, w Watch) ([]AlertPayload, error) {
	result, err := a.searcher.Search(ctx, w.Query)
	if err != nil {
		return nil, err
	}

	alerts := make([]AlertPayload, 0, len(result.Results))
	for i := range result.Results {
		p := &result.Results[i]
		if w.MaxUnitPrice.Valid && (!p.UnitPrice.Valid || p.UnitPrice.Decimal.GreaterThan(w.MaxUnitPrice.Decimal)) {
			continue
		}
		alerts = append(alerts, Payload(w.Name, len(alerts)+1, p))
	}
	return alerts, nil
}

// Payload formats a product for delivery.
func Payload(watch string, rank int, p *domain.Product) AlertPayload {
	quantity := domain.FormatNullQuantity(p.Quantity)
	if quantity != domain.NotAvailable && p.Unit != domain.UnitNone {
		quantity += " " + string(p.Unit)
	}
	return AlertPayload{
		WatchName:   watch,
		Rank:        rank,
		ProductName: p.Name,
		Store:       strings.TrimSpace(p.Store),
		ProductURL:  p.ProductURL,
		Price:       "$" + domain.FormatMoney(p.Price),
		Quantity:    quantity,
		UnitPrice:   p.UnitPriceLabel(),
		SaleStory:   p.SaleStory,
		ValidTo:     domain.FormatDate(p.ValidTo),
	}
}
