package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/flyer-price-tracker/internal/engine"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Refresher runs a catalog refresh.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) (*domain.RefreshRun, error)
}

// RunsProvider lists recorded refresh runs.
type RunsProvider interface {
	ListRefreshRuns(ctx context.Context, limit int) ([]domain.RefreshRun, error)
}

// RefreshHandler handles manual refresh requests and refresh history.
type RefreshHandler struct {
	refresher Refresher
	runs      RunsProvider
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(r Refresher, runs RunsProvider) *RefreshHandler {
	return &RefreshHandler{refresher: r, runs: runs}
}

// RefreshOutput is the response body for the refresh endpoint.
type RefreshOutput struct {
	Body *domain.RefreshRun
}

// ListRunsInput is the query for refresh history.
type ListRunsInput struct {
	Limit int `query:"limit" doc:"Number of runs to return, newest first" default:"20" minimum:"1" maximum:"100"`
}

// ListRunsOutput is the response body for refresh history.
type ListRunsOutput struct {
	Body []domain.RefreshRun
}

// Refresh fetches every tracked flyer now and swaps the results into the
// catalog.
func (h *RefreshHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	run, err := h.refresher.Refresh(ctx, engine.TriggerAPI)
	if err != nil {
		if errors.Is(err, engine.ErrRefreshInProgress) {
			return nil, huma.Error409Conflict(err.Error())
		}
		return nil, huma.Error500InternalServerError("refresh failed: " + err.Error())
	}
	return &RefreshOutput{Body: run}, nil
}

// ListRuns returns the most recent refresh runs.
func (h *RefreshHandler) ListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	runs, err := h.runs.ListRefreshRuns(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing refresh runs failed: " + err.Error())
	}
	if runs == nil {
		runs = []domain.RefreshRun{}
	}
	return &ListRunsOutput{Body: runs}, nil
}

// RegisterRefreshRoutes registers refresh endpoints with the Huma API.
func RegisterRefreshRoutes(api huma.API, h *RefreshHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Refresh the catalog",
		Description: "Fetches every tracked flyer, normalizes the items and replaces " +
			"the catalog. The previous catalog is kept if the refresh fails.",
		Tags:   []string{"refresh"},
		Errors: []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Refresh)

	huma.Register(api, huma.Operation{
		OperationID: "list-refresh-runs",
		Method:      http.MethodGet,
		Path:        "/api/v1/refresh/runs",
		Summary:     "List refresh runs",
		Description: "Returns the refresh history, newest first.",
		Tags:        []string{"refresh"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListRuns)
}
