// Package search talks to the Tavily web-search collaborator.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobscout-engine/internal/netutil"
)

const defaultBaseURL = "https://api.tavily.com"

// Result is one hit as the provider reports it.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the provider payload for one query.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

type Config struct {
	APIKey     string
	BaseURL    string // override for tests
	MaxResults int    // provider-side cap per query
	Limiter    *netutil.HostLimiter
}

type Client struct {
	hc         *http.Client
	limiter    *netutil.HostLimiter
	baseURL    string
	apiKey     string
	maxResults int
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Client{
		hc:         &http.Client{Timeout: 20 * time.Second},
		limiter:    cfg.Limiter,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
	}
}

// Search runs one query and returns the provider's hits.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, c.baseURL); err != nil {
			return nil, fmt.Errorf("tavily: wait limiter: %w", err)
		}
	}

	body, err := json.Marshal(map[string]any{
		"query":       query,
		"max_results": c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "jobscout/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("tavily: search status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	return &out, nil
}
