package scrape

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

const graphBaseURL = "https://api.scrapegraphai.com/v1"

type GraphConfig struct {
	APIKey  string
	BaseURL string // override for tests
	Limiter *netutil.HostLimiter
}

// GraphClient calls the hosted ScrapeGraphAI smartscraper endpoint.
type GraphClient struct {
	hc      *http.Client
	limiter *netutil.HostLimiter
	baseURL string
	apiKey  string
}

func NewGraph(cfg GraphConfig) *GraphClient {
	base := cfg.BaseURL
	if base == "" {
		base = graphBaseURL
	}
	return &GraphClient{
		// the service renders and mines the page; give it room
		hc:      &http.Client{Timeout: 90 * time.Second},
		limiter: cfg.Limiter,
		baseURL: base,
		apiKey:  cfg.APIKey,
	}
}

func (c *GraphClient) Name() string { return "scrapegraph" }

func (c *GraphClient) Extract(ctx context.Context, pageURL, instruction string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, c.baseURL); err != nil {
			return nil, fmt.Errorf("scrapegraph: wait limiter: %w", err)
		}
	}

	body, err := json.Marshal(map[string]string{
		"website_url": pageURL,
		"user_prompt": instruction,
	})
	if err != nil {
		return nil, fmt.Errorf("scrapegraph: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/smartscraper", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scrapegraph: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("SGAI-APIKEY", c.apiKey)
	req.Header.Set("User-Agent", "jobscout/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrapegraph: smartscraper: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("scrapegraph: smartscraper status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}

	var out struct {
		Status string          `json:"status"`
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("scrapegraph: decode response: %w", err)
	}
	if out.Status != "completed" {
		return nil, fmt.Errorf("scrapegraph: request status %q: %s", out.Status, out.Error)
	}
	if len(out.Result) == 0 {
		return nil, fmt.Errorf("scrapegraph: empty result for %s", pageURL)
	}
	return out.Result, nil
}
