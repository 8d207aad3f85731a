package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/metra/internal/graph"
)

// TaskSummary is the minimal task info sent to Claude for predecessor inference.
type TaskSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Duration     int      `json:"duration"`
	Predecessors []string `json:"predecessors,omitempty"`
}

// Summaries converts a task list into prompt input.
func Summaries(tasks []graph.Task) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	for i, t := range tasks {
		out[i] = TaskSummary{
			ID:           t.ID,
			Name:         t.Name,
			Duration:     t.Duration,
			Predecessors: t.Predecessors,
		}
	}
	return out
}

// Edge is a single inferred precedence relation.
type Edge struct {
	TaskID        string `json:"task_id"`        // task that waits
	PredecessorID string `json:"predecessor_id"` // task that must finish first
	Reason        string `json:"reason"`
}

// InferResult holds the full response from Claude.
type InferResult struct {
	Edges   []Edge `json:"edges"`
	Summary string `json:"summary"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
func NewClient(apiKey, model string, maxTokens int) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{inner: inner, model: anthropic.Model(model), maxTokens: int64(maxTokens)}, nil
}

const inferPredecessorsPrompt = `You are an experienced project planner. Given a list of project activities with durations, infer which activities must finish before others can start (finish-to-start precedence, no lag).

Rules:
- Only add a predecessor when there is a strong causal reason (task B cannot start until task A is complete).
- Prefer fewer edges; do not add transitive or speculative predecessors.
- Keep predecessors that are already listed; only propose new ones.
- Do not create cycles.
- Only use task IDs from the provided list.
- A task cannot be its own predecessor.

Return your answer as JSON with this exact structure:
{
  "edges": [
    {"task_id": "<task that waits>", "predecessor_id": "<task that must finish first>", "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph summary of the precedence structure>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the tasks:
`

// buildPrompt constructs the full prompt for predecessor inference.
func buildPrompt(tasks []TaskSummary) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return inferPredecessorsPrompt + string(data), nil
}

// InferPredecessors calls the Claude API to propose predecessor edges.
func (c *Client) InferPredecessors(ctx context.Context, tasks []TaskSummary) (*InferResult, error) {
	prompt, err := buildPrompt(tasks)
	if err != nil {
		return nil, err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return ParseResult(text)
}

// ParseResult decodes a model reply, tolerating markdown fences.
func ParseResult(text string) (*InferResult, error) {
	text = stripJSONFences(text)

	var result InferResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return &result, nil
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
