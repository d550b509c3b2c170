package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-5"

// TaskSummary is the minimal task info sent to Claude for link inference.
type TaskSummary struct {
	ID       int    `json:"id"`
	WBS      string `json:"wbs"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Summary  bool   `json:"summary,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// LinkEdge is a single inferred link.
type LinkEdge struct {
	SuccessorID   int    `json:"successor_id"`   // task that waits
	PredecessorID int    `json:"predecessor_id"` // task it waits on
	Kind          string `json:"kind"`           // fs, ss, ff or sf; empty means fs
	Lag           string `json:"lag,omitempty"`  // e.g. 1d, -4h
	Reason        string `json:"reason"`
}

// InferLinksResult holds the full response from Claude.
type InferLinksResult struct {
	Links   []LinkEdge `json:"links"`
	Summary string     `json:"summary"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model and maxTokens fall back to defaults when empty.
func NewClient(apiKey, model string, maxTokens int64) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.Model(defaultModel)
	if model != "" {
		m = anthropic.Model(model)
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{inner: inner, model: m, maxTokens: maxTokens}, nil
}

const inferLinksPrompt = `You are an experienced project scheduler. Given the task list of a project plan, propose the links between tasks.

Rules:
- Only add a link when there is a strong causal reason (the successor cannot start, or finish, until the predecessor does).
- Prefer fewer links. Do not add transitive or speculative links.
- Do not create cycles.
- Only use task IDs from the provided list.
- A task cannot link to itself.
- Never link to or from a summary task; link their subtasks instead.
- Use kind "fs" unless another relation is clearly meant: "ss" start-to-start, "ff" finish-to-finish, "sf" start-to-finish.
- Lag is optional, written like 2d, 4h or -1d.

Return your answer as JSON with this exact structure:
{
  "links": [
    {"successor_id": <task that waits>, "predecessor_id": <task it waits on>, "kind": "fs", "lag": "", "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph summary of the dependency structure>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the tasks:
`

// buildPrompt constructs the full prompt for link inference.
func buildPrompt(tasks []TaskSummary) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return inferLinksPrompt + string(data), nil
}

// InferLinks calls the Claude API to propose links between tasks.
func (c *Client) InferLinks(ctx context.Context, tasks []TaskSummary) (*InferLinksResult, error) {
	prompt, err := buildPrompt(tasks)
	if err != nil {
		return nil, err
	}
	text, err := c.complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	return ParseInferLinks(text)
}

// ParseInferLinks decodes a link inference response, tolerating code fences.
func ParseInferLinks(text string) (*InferLinksResult, error) {
	text = stripJSONFences(text)

	var result InferLinksResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return &result, nil
}

const narratePrompt = `You are a project manager explaining a freshly computed schedule to the team.

You will receive a schedule summary: project dates, the critical path and any constraint conflicts.

Produce a concise narrative covering:
- When the project finishes and what drives that date.
- Which constraint conflicts need attention and what could resolve them.
- Where there is slack that could absorb delays.

Keep it to two short paragraphs. Do not repeat the table verbatim.
`

// NarrateSchedule sends a schedule summary to Claude and returns a
// human-readable explanation of it.
func (c *Client) NarrateSchedule(ctx context.Context, summary string) (string, error) {
	text, err := c.complete(ctx, narratePrompt, "## Schedule Summary\n\n"+summary)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// complete sends one user turn, with an optional system prompt, and joins
// the text blocks of the reply.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
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
