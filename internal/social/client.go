// Package social queries the social-post-search provider and normalizes its
// nested timeline payloads into flat social records.
package social

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/provider"
	"github.com/jonathan/content-agent/internal/types"
)

const (
	providerName = "social"

	defaultHost = "twitter241.p.rapidapi.com"

	// DefaultCount is the number of posts requested per query.
	DefaultCount = 20
	// DefaultSearchType is the provider's result ranking mode.
	DefaultSearchType = "Top"
)

// Client wraps the RapidAPI-hosted post search API.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// NewClient builds a social-search client. A missing API key is a
// configuration error and fails construction.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, provider.NewAuth(providerName, "API key is required")
	}

	c := &Client{
		baseURL:    "https://" + defaultHost,
		host:       defaultHost,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchPosts issues one search request and returns the normalized records
// plus the raw payload for audit storage. Zero extracted records is not an
// error; the provider's schema varies by query type and a shape mismatch is
// logged as a diagnostic instead.
func (c *Client) SearchPosts(ctx context.Context, query string, count int, searchType string) ([]types.SocialRecord, string, error) {
	if count <= 0 {
		count = DefaultCount
	}
	if searchType == "" {
		searchType = DefaultSearchType
	}

	endpoint := fmt.Sprintf("%s/search-v2?type=%s&count=%d&query=%s",
		c.baseURL, url.QueryEscape(searchType), count, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", provider.NewNetwork(providerName, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", provider.NewNetwork(providerName, "read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, string(raw), provider.NewAuth(providerName, fmt.Sprintf("credential rejected: %s", resp.Status))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, string(raw), provider.NewNetwork(providerName,
			fmt.Sprintf("unexpected status %s: %s", resp.Status, strings.TrimSpace(truncate(string(raw), 512))), nil)
	}

	records, err := Normalize(raw)
	if err != nil {
		return nil, string(raw), err
	}
	if len(records) == 0 {
		logger.WarnWithFields("no posts extracted from social response", logger.Fields{
			"query":       query,
			"raw_snippet": truncate(string(raw), 500),
		})
	}
	return records, string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
