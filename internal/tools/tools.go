// Package tools exposes external capabilities to the model as named,
// callable functions. A tool owns no state and no retries: one invocation is
// one synchronous provider round trip.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/search"
)

// Tool is one named capability the model may invoke mid-reasoning. Run takes
// the raw JSON arguments object and returns the payload handed back as the
// tool response. A returned error aborts the surrounding capability call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema of the arguments object
	Run         func(ctx context.Context, args json.RawMessage) (string, error)
}

// Searcher is the slice of the search client the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Response, error)
}

// Search wraps the web-search collaborator. Provider failures propagate:
// a run that cannot search cannot meet its result quota.
func Search(client Searcher) Tool {
	return Tool{
		Name:        "search",
		Description: "Run one web search query and get back job posting results with title, url and content snippet.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to run.",
				},
			},
			"required": []string{"query"},
		},
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("search tool: bad arguments: %w", err)
			}
			if in.Query == "" {
				return "", fmt.Errorf("search tool: empty query")
			}
			res, err := client.Search(ctx, in.Query)
			if err != nil {
				return "", err
			}
			raw, err := json.Marshal(res)
			if err != nil {
				return "", fmt.Errorf("search tool: encode results: %w", err)
			}
			return string(raw), nil
		},
	}
}

// Scrape wraps a scraping engine; instruction tells the engine what to pull
// from each page. A page that fails to scrape comes back to the model as an
// error payload so it can drop that posting and move on. Only context
// cancellation aborts the call.
func Scrape(provider scrape.Provider, instruction string) Tool {
	return Tool{
		Name:        "scrape",
		Description: "Fetch one job posting page and extract its details. Returns the page_url plus the extracted payload.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page_url": map[string]any{
					"type":        "string",
					"description": "URL of the job posting page to scrape.",
				},
			},
			"required": []string{"page_url"},
		},
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in struct {
				PageURL string `json:"page_url"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("scrape tool: bad arguments: %w", err)
			}
			if in.PageURL == "" {
				return "", fmt.Errorf("scrape tool: empty page_url")
			}
			details, err := provider.Extract(ctx, in.PageURL, instruction)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				log.Printf("[scrape] drop %s: %v", in.PageURL, err)
				out, merr := json.Marshal(map[string]string{"page_url": in.PageURL, "error": err.Error()})
				if merr != nil {
					return "", fmt.Errorf("scrape tool: encode error payload: %w", merr)
				}
				return string(out), nil
			}
			out, err := json.Marshal(struct {
				PageURL string          `json:"page_url"`
				Details json.RawMessage `json:"details"`
			}{in.PageURL, details})
			if err != nil {
				return "", fmt.Errorf("scrape tool: encode payload: %w", err)
			}
			return string(out), nil
		},
	}
}
