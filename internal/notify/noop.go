package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by writing deals to the log instead of a
// webhook. It is used when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that only logs deals.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendAlert logs a single deal.
func (n *NoOpNotifier) SendAlert(_ context.Context, alert *AlertPayload) error {
	n.log.Info("deal (no webhook configured)", dealAttrs(alert.WatchName, alert)...)
	return nil
}

// SendBatchAlert logs the best deal of a batch and how many were found.
func (n *NoOpNotifier) SendBatchAlert(_ context.Context, alerts []AlertPayload, watchName string) error {
	if len(alerts) == 0 {
		return nil
	}
	attrs := append(dealAttrs(watchName, &alerts[0]), "deals", len(alerts))
	n.log.Info("best deal (no webhook configured)", attrs...)
	return nil
}

func dealAttrs(watch string, a *AlertPayload) []any {
	return []any{
		"watch", watch,
		"rank", a.Rank,
		"product", a.ProductName,
		"store", a.Store,
		"price", a.Price,
		"unit_price", a.UnitPrice,
	}
}
