package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/flyer-price-tracker/pkg/search"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Searcher runs product searches against the catalog.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
}

// Handler serves the HTML search page.
type Handler struct {
	searcher Searcher
	log      *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(s Searcher, log *slog.Logger) *Handler {
	return &Handler{searcher: s, log: log}
}

// Register mounts the page routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.GET("/search", h.Search)
}

// Index renders the empty search form.
func (h *Handler) Index(c echo.Context) error {
	return render(c, http.StatusOK, PageData{SortBy: domain.SortByPrice})
}

// Search renders ranked results for the q query parameter.
func (h *Handler) Search(c echo.Context) error {
	data := PageData{
		Term:   c.QueryParam("q"),
		SortBy: domain.SortBy(c.QueryParam("sort_by")),
		Store:  strings.TrimSpace(c.QueryParam("store")),
	}
	if data.SortBy == "" {
		data.SortBy = domain.SortByPrice
	}

	q := domain.SearchQuery{Term: data.Term, SortBy: data.SortBy}
	if data.Store != "" {
		q.Stores = []string{data.Store}
	}

	result, err := h.searcher.Search(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			data.Error = err.Error()
			return render(c, http.StatusBadRequest, data)
		}
		h.log.Error("page search failed", "term", data.Term, "error", err)
		data.Error = "Search is temporarily unavailable."
		return render(c, http.StatusInternalServerError, data)
	}

	data.Result = result
	return render(c, http.StatusOK, data)
}

func render(c echo.Context, status int, d PageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return Page(d).Render(c.Request().Context(), c.Response())
}
