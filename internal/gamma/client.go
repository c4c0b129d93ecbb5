package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is the base URL for the Gamma API.
	DefaultBaseURL = "https://gamma-api.polymarket.com"
)

// Client is an HTTP client for the Gamma API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Gamma API client.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
	}
}

// WithBaseURL sets a custom base URL for the client.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// FetchEvents fetches events from the Gamma API.
func (c *Client) FetchEvents(ctx context.Context, filter *Filter) ([]Event, error) {
	u := c.baseURL + "/events"
	if filter != nil {
		u += "?" + buildQuery(filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return events, nil
}

// FetchMarkets fetches markets from the Gamma API.
func (c *Client) FetchMarkets(ctx context.Context, filter *Filter) ([]Market, error) {
	u := c.baseURL + "/markets"
	if filter != nil {
		u += "?" + buildQuery(filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var markets []Market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return markets, nil
}

// FetchTopEvents fetches the highest-volume active events.
func (c *Client) FetchTopEvents(ctx context.Context, limit int) ([]Event, error) {
	active := true
	closed := false
	return c.FetchEvents(ctx, &Filter{
		Active: &active,
		Closed: &closed,
		Order:  "volume",
		Limit:  limit,
	})
}

// buildQuery builds URL query parameters from a Filter.
func buildQuery(f *Filter) string {
	v := url.Values{}
	if f.Active != nil {
		v.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.Closed != nil {
		v.Set("closed", strconv.FormatBool(*f.Closed))
	}
	if f.Order != "" {
		v.Set("order", f.Order)
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		v.Set("offset", strconv.Itoa(f.Offset))
	}
	return v.Encode()
}
