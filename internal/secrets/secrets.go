// Package secrets resolves collaborator API keys. The environment wins,
// the OS keychain is the fallback. Keys never live in the config file.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/sync/errgroup"
)

// KeyringService groups the app's entries in the OS keychain.
const KeyringService = "jobscout"

// Provider names one collaborator credential and where to look for it.
type Provider struct {
	Name   string // keychain account, e.g. "openai"
	EnvVar string // e.g. "OPENAI_API_KEY"
}

var (
	OpenAI      = Provider{Name: "openai", EnvVar: "OPENAI_API_KEY"}
	Tavily      = Provider{Name: "tavily", EnvVar: "TAVILY_API_KEY"}
	ScrapeGraph = Provider{Name: "scrapegraph", EnvVar: "SCRAPEGRAPH_API_KEY"}
)

// ByName maps a CLI-facing provider name to its credential spec.
func ByName(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case OpenAI.Name:
		return OpenAI, true
	case Tavily.Name:
		return Tavily, true
	case ScrapeGraph.Name:
		return ScrapeGraph, true
	}
	return Provider{}, false
}

// Get resolves one credential.
func Get(p Provider) (string, error) {
	if v := strings.TrimSpace(os.Getenv(p.EnvVar)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(KeyringService, p.Name)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", fmt.Errorf("%s key not found: set %s or run `jobscout keys set %s <value>`",
		p.Name, p.EnvVar, p.Name)
}

// Set stores a credential in the keychain.
func Set(p Provider, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("secrets: refusing to store an empty value")
	}
	return keyring.Set(KeyringService, p.Name, strings.TrimSpace(value))
}

// Delete removes a credential from the keychain.
func Delete(p Provider) error {
	return keyring.Delete(KeyringService, p.Name)
}

// ResolveAll looks every credential up before a run starts. Keychain round
// trips are I/O, so the lookups run concurrently; the first missing key
// fails the whole preflight.
func ResolveAll(ctx context.Context, providers ...Provider) (map[string]string, error) {
	values := make([]string, len(providers))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := Get(p)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(providers))
	for i, p := range providers {
		out[p.Name] = values[i]
	}
	return out, nil
}
