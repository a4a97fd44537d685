package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGraphClientExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/smartscraper" {
			t.Errorf("got %s %s, want POST /smartscraper", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("SGAI-APIKEY"); got != "sgai-test" {
			t.Errorf("SGAI-APIKEY = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["website_url"] != "https://example.com/jobs/9" {
			t.Errorf("website_url = %q", body["website_url"])
		}
		if !strings.Contains(body["user_prompt"], "job details") {
			t.Errorf("user_prompt = %q, missing instruction", body["user_prompt"])
		}
		w.Write([]byte(`{"status": "completed", "result": {"title": "ML Engineer"}, "error": ""}`))
	}))
	defer ts.Close()

	c := NewGraph(GraphConfig{APIKey: "sgai-test", BaseURL: ts.URL})
	raw, err := c.Extract(context.Background(), "https://example.com/jobs/9", "extract the job details")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("result payload: %v", err)
	}
	if got["title"] != "ML Engineer" {
		t.Fatalf("result = %v", got)
	}
}

func TestGraphClientSurfacesFailedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "failed", "result": null, "error": "render timeout"}`))
	}))
	defer ts.Close()

	c := NewGraph(GraphConfig{APIKey: "sgai-test", BaseURL: ts.URL})
	_, err := c.Extract(context.Background(), "https://example.com/jobs/9", "extract")
	if err == nil || !strings.Contains(err.Error(), "render timeout") {
		t.Fatalf("err = %v, want provider error text", err)
	}
}

func TestLocalEngineReducesPage(t *testing.T) {
	page := `<html><head><title>Data Engineer - Acme</title>
		<script>alert("tracking")</script></head>
		<body><h1>Data Engineer</h1><p>Build   pipelines in Cairo.</p>
		<style>.x{}</style></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer ts.Close()

	e := NewLocal(nil)
	raw, err := e.Extract(context.Background(), ts.URL+"/jobs/1", "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var got struct {
		PageURL string `json:"page_url"`
		Title   string `json:"title"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Title != "Data Engineer - Acme" {
		t.Fatalf("title = %q", got.Title)
	}
	if !strings.Contains(got.Text, "Build pipelines in Cairo.") {
		t.Fatalf("text = %q, want collapsed page text", got.Text)
	}
	if strings.Contains(got.Text, "alert") {
		t.Fatalf("script text leaked into payload: %q", got.Text)
	}
	if got.PageURL != ts.URL+"/jobs/1" {
		t.Fatalf("page_url = %q", got.PageURL)
	}
}

func TestLocalEngineReportsPageStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	e := NewLocal(nil)
	_, err := e.Extract(context.Background(), ts.URL+"/gone", "")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want status 404", err)
	}
}
