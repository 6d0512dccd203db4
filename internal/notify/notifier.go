// Package notify defines the notification interface and implementations
// for deal alert delivery.
package notify

import (
	"context"
)

// AlertPayload contains the data needed to send a deal alert notification.
// Money and quantity fields are preformatted; absent values read "N/A".
type AlertPayload struct {
	WatchName   string
	Rank        int // 1 is the best deal
	ProductName string
	Store       string
	ProductURL  string
	Price       string
	Quantity    string
	UnitPrice   string
	SaleStory   string
	ValidTo     string
}

// Notifier defines the interface for sending deal alert notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload) error
	SendBatchAlert(ctx context.Context, alerts []AlertPayload, watchName string) error
}
