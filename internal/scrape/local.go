package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/netutil"
)

// localTextCap keeps one page from flooding the extraction context.
const localTextCap = 8000

// LocalEngine fetches the page itself and reduces it to title plus visible
// text. No instruction following; the model downstream does the mining.
type LocalEngine struct {
	hc      *http.Client
	limiter *netutil.HostLimiter
}

func NewLocal(limiter *netutil.HostLimiter) *LocalEngine {
	return &LocalEngine{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (e *LocalEngine) Name() string { return "local" }

func (e *LocalEngine) Extract(ctx context.Context, pageURL, instruction string) (json.RawMessage, error) {
	if e.limiter != nil {
		if err := e.limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, fmt.Errorf("local scrape: wait limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("local scrape: build request: %w", err)
	}
	req.Header.Set("User-Agent", "jobscout/1.0 (+local)")

	res, err := e.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local scrape: get page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("local scrape: page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("local scrape: parse html: %w", err)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	payload := struct {
		PageURL string `json:"page_url"`
		Title   string `json:"title"`
		Text    string `json:"text"`
	}{
		PageURL: pageURL,
		Title:   cleanText(doc.Find("title").First().Text()),
		Text:    clamp(cleanText(doc.Find("body").Text()), localTextCap),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("local scrape: encode payload: %w", err)
	}
	return raw, nil
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func clamp(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
