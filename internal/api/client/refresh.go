package client

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Refresh runs a catalog refresh on the server and returns its record.
func (c *Client) Refresh(ctx context.Context) (*domain.RefreshRun, error) {
	var run domain.RefreshRun
	if err := c.post(ctx, "/api/v1/refresh", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRefreshRuns returns up to limit refresh runs, newest first.
func (c *Client) ListRefreshRuns(ctx context.Context, limit int) ([]domain.RefreshRun, error) {
	path := "/api/v1/refresh/runs"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var runs []domain.RefreshRun
	if err := c.get(ctx, path, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
