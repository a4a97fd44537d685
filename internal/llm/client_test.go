package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobscout-engine/internal/tools"
)

// chatScript serves scripted chat-completion responses and records decoded
// request bodies. The last response repeats once the script runs out.
type chatScript struct {
	t         *testing.T
	responses []string
	requests  []map[string]any
}

func (s *chatScript) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			s.t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.t.Errorf("decode request: %v", err)
		}
		s.requests = append(s.requests, body)
		idx := len(s.requests) - 1
		if idx >= len(s.responses) {
			idx = len(s.responses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s.responses[idx]))
	})
}

func finalMessage(content string) string {
	quoted, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id": "r", "object": "chat.completion", "created": 1, "model": "gpt-4o",
		"choices": [{"index": 0, "finish_reason": "stop",
		"message": {"role": "assistant", "content": %s}}]}`, quoted)
}

func toolCallMessage(name, args string) string {
	quoted, _ := json.Marshal(args)
	return fmt.Sprintf(`{"id": "r", "object": "chat.completion", "created": 1, "model": "gpt-4o",
		"choices": [{"index": 0, "finish_reason": "tool_calls",
		"message": {"role": "assistant", "content": "",
		"tool_calls": [{"id": "call_1", "type": "function",
		"function": {"name": %q, "arguments": %s}}]}}]}`, name, quoted)
}

func newTestClient(ts *httptest.Server, maxRounds int) *Client {
	return New(Config{
		APIKey:        "test-key",
		BaseURL:       ts.URL + "/v1",
		Model:         "gpt-4o",
		MaxToolRounds: maxRounds,
	})
}

func TestCompleteRunsToolLoop(t *testing.T) {
	script := &chatScript{t: t, responses: []string{
		toolCallMessage("probe", `{"query": "ml engineer"}`),
		finalMessage(`{"queries": ["a"]}`),
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	var gotArgs string
	probe := tools.Tool{
		Name:        "probe",
		Description: "test tool",
		Parameters:  map[string]any{"type": "object"},
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			gotArgs = string(args)
			return `{"ok": true}`, nil
		},
	}

	res, err := newTestClient(ts, 3).Complete(context.Background(), Request{
		System:      "you are a test",
		Instruction: "call the tool",
		Tools:       []tools.Tool{probe},
		WantJSON:    true,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Content != `{"queries": ["a"]}` {
		t.Fatalf("content = %q", res.Content)
	}
	if res.ToolRounds != 1 {
		t.Fatalf("tool rounds = %d, want 1", res.ToolRounds)
	}
	if !strings.Contains(gotArgs, "ml engineer") {
		t.Fatalf("tool args = %q", gotArgs)
	}

	first := script.requests[0]
	if rf, ok := first["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
		t.Fatalf("response_format = %v", first["response_format"])
	}
	if first["temperature"] == nil {
		t.Fatalf("temperature not set on the wire")
	}
	wiredTools, ok := first["tools"].([]any)
	if !ok || len(wiredTools) != 1 {
		t.Fatalf("tools = %v", first["tools"])
	}

	second := script.requests[1]
	var sawToolMsg bool
	for _, m := range second["messages"].([]any) {
		msg := m.(map[string]any)
		if msg["role"] == "tool" && msg["tool_call_id"] == "call_1" && strings.Contains(fmt.Sprint(msg["content"]), `"ok"`) {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Fatalf("second request carries no tool message: %v", second["messages"])
	}
}

func TestCompleteBoundsToolRounds(t *testing.T) {
	script := &chatScript{t: t, responses: []string{
		toolCallMessage("probe", `{}`),
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	probe := tools.Tool{
		Name: "probe",
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "{}", nil
		},
	}

	_, err := newTestClient(ts, 2).Complete(context.Background(), Request{
		Instruction: "loop forever",
		Tools:       []tools.Tool{probe},
	})
	if err == nil || !strings.Contains(err.Error(), "tool rounds") {
		t.Fatalf("err = %v, want tool-round ceiling", err)
	}
	if len(script.requests) != 3 {
		t.Fatalf("requests = %d, want 3 (two rounds, then the refusal)", len(script.requests))
	}
}

func TestCompletePropagatesToolError(t *testing.T) {
	script := &chatScript{t: t, responses: []string{
		toolCallMessage("probe", `{}`),
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	boom := errors.New("tavily: search status 500")
	probe := tools.Tool{
		Name: "probe",
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "", boom
		},
	}

	_, err := newTestClient(ts, 3).Complete(context.Background(), Request{
		Instruction: "call it",
		Tools:       []tools.Tool{probe},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}

func TestCompleteAnswersUnknownTool(t *testing.T) {
	script := &chatScript{t: t, responses: []string{
		toolCallMessage("bogus", `{}`),
		finalMessage("done"),
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	res, err := newTestClient(ts, 3).Complete(context.Background(), Request{Instruction: "go"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Content != "done" {
		t.Fatalf("content = %q", res.Content)
	}
	second := script.requests[1]
	var sawRecovery bool
	for _, m := range second["messages"].([]any) {
		msg := m.(map[string]any)
		if msg["role"] == "tool" && strings.Contains(fmt.Sprint(msg["content"]), "unknown tool") {
			sawRecovery = true
		}
	}
	if !sawRecovery {
		t.Fatalf("model got no recovery payload: %v", second["messages"])
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json-fence", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "html-fence", in: "```html\n<p>x</p>\n```", want: "<p>x</p>"},
		{name: "bare-fence", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "no-fence", in: "  {\"a\": 1} ", want: `{"a": 1}`},
		{name: "plain-text", in: "hello", want: "hello"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := stripFences(test.in); got != test.want {
				t.Fatalf("stripFences(%q) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}
