// Package publish talks to the post-scheduling API. All calls share a
// one-second pacing gate and retry transient upstream failures before
// surfacing a typed provider error.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/content-agent/internal/provider"
)

const (
	providerName   = "publish"
	defaultBaseURL = "https://api.typefully.com/v1"

	// minRequestInterval is the minimum spacing between any two calls to
	// the scheduling API, enforced client-side across all methods.
	minRequestInterval = time.Second

	maxAttempts       = 3
	retryBackoff      = 500 * time.Millisecond
	defaultRetryAfter = 60 * time.Second
	maxErrBodySnippet = 512
)

// NextFreeSlot schedules a draft into the next open slot on the
// connected account instead of at a fixed time.
const NextFreeSlot = "next-free-slot"

// retryableStatuses are upstream responses worth another attempt.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// DraftRequest is the payload for creating a draft. ScheduleDate is
// either empty (draft stays unscheduled), NextFreeSlot, or an RFC 3339
// timestamp.
type DraftRequest struct {
	Content            string `json:"content" validate:"required"`
	Threadify          bool   `json:"threadify,omitempty"`
	Share              bool   `json:"share,omitempty"`
	ScheduleDate       string `json:"schedule-date,omitempty"`
	AutoRetweetEnabled bool   `json:"auto_retweet_enabled,omitempty"`
	AutoPlugEnabled    bool   `json:"auto_plug_enabled,omitempty"`
}

// Draft is the scheduling API's view of a draft.
type Draft struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	TextFirstTweet string `json:"text_first_tweet"`
	NumTweets      int    `json:"num_tweets"`
	ScheduledDate  string `json:"scheduled_date"`
	PublishedOn    string `json:"published_on"`
	ShareURL       string `json:"share_url"`
}

// Client is the scheduling API client. It is safe for concurrent use;
// the pacing gate serializes outgoing requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	validate   *validator.Validate

	mu          sync.Mutex
	lastRequest time.Time

	now   func() time.Time
	sleep func(time.Duration)
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

// NewClient builds a scheduling client. A missing API key is a
// configuration error and fails construction.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, provider.NewAuth(providerName, "API key is required")
	}

	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		validate:   validator.New(),
		now:        time.Now,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateDraft creates a draft, optionally scheduled. Thread breaks in
// Content follow the API's four-newline convention; Threadify asks the
// service to split long content on its own.
func (c *Client) CreateDraft(ctx context.Context, req DraftRequest) (*Draft, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid draft request: %w", err)
	}
	if req.ScheduleDate != "" && req.ScheduleDate != NextFreeSlot {
		if _, err := time.Parse(time.RFC3339, req.ScheduleDate); err != nil {
			return nil, fmt.Errorf("schedule date must be %q or RFC 3339: %w", NextFreeSlot, err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal draft request: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/drafts/", body)
	if err != nil {
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, provider.NewMalformed(providerName, "decode draft response", err)
	}
	return &draft, nil
}

// RecentlyScheduled lists drafts scheduled on the connected account.
// contentFilter narrows results to "threads" or "tweets"; empty means
// both.
func (c *Client) RecentlyScheduled(ctx context.Context, contentFilter string) ([]Draft, error) {
	return c.listDrafts(ctx, "/drafts/recently-scheduled/", contentFilter)
}

// RecentlyPublished lists drafts already published from the connected
// account, newest first.
func (c *Client) RecentlyPublished(ctx context.Context, contentFilter string) ([]Draft, error) {
	return c.listDrafts(ctx, "/drafts/recently-published/", contentFilter)
}

func (c *Client) listDrafts(ctx context.Context, path, contentFilter string) ([]Draft, error) {
	if contentFilter != "" {
		if err := c.validate.Var(contentFilter, "oneof=threads tweets"); err != nil {
			return nil, fmt.Errorf("content filter must be \"threads\" or \"tweets\", got %q", contentFilter)
		}
		path += "?" + url.Values{"content_filter": {contentFilter}}.Encode()
	}

	raw, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil, provider.NewMalformed(providerName, "decode drafts response", err)
	}
	return drafts, nil
}

// doRequest paces, sends, and retries one API call. Statuses in
// retryableStatuses get up to maxAttempts tries with doubling backoff;
// a rate limit that survives the retries comes back as a typed
// rate-limit failure carrying the server's Retry-After hint.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastStatus int
	var lastRaw []byte
	var lastRetryAfter time.Duration

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(retryBackoff << (attempt - 1))
		}
		c.throttle()

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("X-API-KEY", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, provider.NewNetwork(providerName, "request failed", err)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, provider.NewNetwork(providerName, "read response body", err)
		}

		if resp.StatusCode < http.StatusBadRequest {
			return raw, nil
		}

		lastStatus = resp.StatusCode
		lastRaw = raw
		lastRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		if !retryableStatuses[resp.StatusCode] {
			break
		}
	}

	switch {
	case lastStatus == http.StatusTooManyRequests:
		return nil, provider.NewRateLimited(providerName, lastRetryAfter)
	case lastStatus == http.StatusUnauthorized || lastStatus == http.StatusForbidden:
		return nil, provider.NewAuth(providerName, fmt.Sprintf("credential rejected: status %d", lastStatus))
	default:
		return nil, provider.NewNetwork(providerName,
			fmt.Sprintf("unexpected status %d: %s", lastStatus, truncate(string(lastRaw), maxErrBodySnippet)), nil)
	}
}

// throttle blocks until at least minRequestInterval has passed since
// the previous request left this client.
func (c *Client) throttle() {
	c.mu.Lock()
	wait := minRequestInterval - c.now().Sub(c.lastRequest)
	if wait > 0 {
		c.sleep(wait)
	}
	c.lastRequest = c.now()
	c.mu.Unlock()
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRetryAfter
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
