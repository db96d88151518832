// Package research queries the web-research provider and normalizes its
// chat-completion-shaped replies into flat research records.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/content-agent/internal/provider"
	"github.com/jonathan/content-agent/internal/types"
)

const (
	providerName    = "research"
	defaultEndpoint = "https://api.perplexity.ai/chat/completions"
	defaultModel    = "sonar-pro"

	systemPrompt = "You are an AI assistant that researches topics and provides concise, factual information, including sources when available. " +
		"Focus on finding recent and relevant articles, blog posts, forum discussions, and social media threads related to the user's query."
)

// Client wraps the OpenAI-compatible research API.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint (used by tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// NewClient builds a research client. A missing API key is a configuration
// error and fails construction.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, provider.NewAuth(providerName, "API key is required")
	}

	c := &Client{
		endpoint:   defaultEndpoint,
		model:      defaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search issues one chat-completion request for the topic and returns the
// normalized records plus the raw payload for audit storage. A payload that
// decodes but matches no known shape yields zero records and no error.
func (c *Client) Search(ctx context.Context, topic string) ([]types.ResearchRecord, string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": topic},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal research request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
	return records, string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
