package flipp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/donaldgifford/flyer-price-tracker/internal/metrics"
)

const (
	// DefaultBaseURL is the public Flipp backflipp gateway.
	DefaultBaseURL = "https://cdn-gateflipp.flippback.com/bf/flipp"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer = "https://flipp.com/"

	maxErrorBody = 512
)

// Endpoint labels used for metrics.
const (
	endpointFlyers     = "flyers"
	endpointFlyerItems = "flyer_items"
	endpointSearch     = "search"
)

// HTTPClient implements Client against the Flipp HTTP API.
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	rateLimiter *RateLimiter
}

// HTTPOption configures the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) HTTPOption {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRateLimiter injects a rate limiter. When set, every request goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) HTTPOption {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// NewHTTPClient creates a new Flipp API client. Requests are traced with
// otelhttp and are no-ops when no tracer provider is installed.
func NewHTTPClient(opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Flyers lists flyers near the postal code, optionally filtered by merchant.
func (c *HTTPClient) Flyers(ctx context.Context, req FlyersRequest) ([]Flyer, error) {
	params := url.Values{}
	params.Set("postal_code", req.PostalCode)
	params.Set("locale", req.Locale)
	if req.Query != "" {
		params.Set("q", req.Query)
	}

	var resp flyersResponse
	if err := c.get(ctx, endpointFlyers, "/flyers?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Flyers, nil
}

// FlyerItems lists every item in a flyer.
func (c *HTTPClient) FlyerItems(ctx context.Context, flyerID int64) ([]Item, error) {
	var resp itemsResponse
	path := "/flyers/" + strconv.FormatInt(flyerID, 10) + "/items"
	if err := c.get(ctx, endpointFlyerItems, path, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Items {
		if resp.Items[i].FlyerID == 0 {
			resp.Items[i].FlyerID = flyerID
		}
	}
	return resp.Items, nil
}

// SearchItems runs a product search across all local flyers.
func (c *HTTPClient) SearchItems(ctx context.Context, req SearchRequest) ([]Item, error) {
	params := url.Values{}
	params.Set("postal_code", req.PostalCode)
	params.Set("locale", req.Locale)
	params.Set("q", req.Query)

	var resp itemsResponse
	if err := c.get(ctx, endpointSearch, "/items/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint, path string, dst any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	metrics.FlippAPICallsTotal.WithLabelValues(endpoint).Inc()

	if err := c.do(ctx, path, dst); err != nil {
		metrics.FlippAPIErrorsTotal.WithLabelValues(endpoint).Inc()
		return err
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", referer)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("flipp API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
