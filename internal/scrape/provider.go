// Package scrape turns a posting page into a raw payload for the model to
// mine. Two engines: the hosted ScrapeGraphAI service, which extracts
// against an instruction, and a local goquery reduction for runs without a
// service key.
package scrape

import (
	"context"
	"encoding/json"
)

// Provider is one scraping engine. Extract fetches pageURL and returns a
// best-effort structured or semi-structured payload; instruction tells
// instruction-following engines what to pull.
type Provider interface {
	Name() string
	Extract(ctx context.Context, pageURL, instruction string) (json.RawMessage, error)
}
