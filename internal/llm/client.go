// Package llm drives the language-model collaborator: one Complete call per
// stage, with tool calls executed inline while the model asks for them.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"jobscout-engine/internal/tools"
)

type Config struct {
	APIKey        string
	BaseURL       string // any OpenAI-compatible backend
	Model         string
	Temperature   float32
	MaxToolRounds int
}

// Client wraps one chat-completion backend.
type Client struct {
	api           *openai.Client
	model         string
	temperature   float32
	maxToolRounds int
}

func New(cfg Config) *Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = 8
	}
	return &Client{
		api:           openai.NewClientWithConfig(c),
		model:         model,
		temperature:   cfg.Temperature,
		maxToolRounds: rounds,
	}
}

// Request is one stage's instruction for the model.
type Request struct {
	System      string       // stage role
	Instruction string       // rendered template with schema and prior context
	Tools       []tools.Tool // allowlist; nil when the stage reasons alone
	WantJSON    bool         // constrain the final message to one JSON object
}

// Result is the model's final message for a Request.
type Result struct {
	Content    string
	ToolRounds int // assistant turns that requested tools
}

// Complete sends the instruction and blocks until the model produces a final
// message, executing allowlisted tool calls as they arrive. Tool errors and
// backend errors abort the call; the tool-round ceiling turns a looping model
// into an error instead of a hung stage.
func (c *Client) Complete(ctx context.Context, req Request) (Result, error) {
	allow := make(map[string]tools.Tool, len(req.Tools))
	wired := make([]openai.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		allow[t.Name] = t
		wired = append(wired, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Instruction,
	})

	var format *openai.ChatCompletionResponseFormat
	if req.WantJSON {
		format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	rounds := 0
	for {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:          c.model,
			Temperature:    c.wireTemperature(),
			Messages:       messages,
			Tools:          wired,
			ResponseFormat: format,
		})
		if err != nil {
			return Result{}, fmt.Errorf("llm: chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return Result{}, fmt.Errorf("llm: response has no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return Result{Content: stripFences(msg.Content), ToolRounds: rounds}, nil
		}

		rounds++
		if rounds > c.maxToolRounds {
			return Result{}, fmt.Errorf("llm: model exceeded %d tool rounds", c.maxToolRounds)
		}
		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			payload, err := c.invoke(ctx, allow, tc)
			if err != nil {
				return Result{}, err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    payload,
				ToolCallID: tc.ID,
			})
		}
	}
}

func (c *Client) invoke(ctx context.Context, allow map[string]tools.Tool, tc openai.ToolCall) (string, error) {
	t, ok := allow[tc.Function.Name]
	if !ok {
		// answer instead of aborting so the model can recover
		log.Printf("[llm] model asked for unknown tool %q", tc.Function.Name)
		return fmt.Sprintf(`{"error": "unknown tool %s"}`, tc.Function.Name), nil
	}
	payload, err := t.Run(ctx, json.RawMessage(tc.Function.Arguments))
	if err != nil {
		return "", fmt.Errorf("llm: tool %s: %w", t.Name, err)
	}
	return payload, nil
}

// json omitempty drops a literal zero; the smallest float still reads as
// zero upstream.
func (c *Client) wireTemperature() float32 {
	if c.temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return c.temperature
}

// stripFences unwraps a ``` fenced block when the model ignores the
// bare-output instruction.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	i := strings.Index(t, "\n")
	if i < 0 {
		return strings.TrimSpace(s)
	}
	t = t[i+1:] // drop the info string line, e.g. "json" or "html"
	if j := strings.LastIndex(t, "```"); j >= 0 {
		t = t[:j]
	}
	return strings.TrimSpace(t)
}
