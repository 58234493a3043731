// Package llm is the chat-completions client used by every model-backed
// collaborator: script writing, plan building, animation code generation
// and repair, and mention parsing.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 90 * time.Second

// Generator is the contract the pipeline depends on: send a system and a
// user prompt, get text back. Schema-constrained calls go through
// CompleteJSON.
type Generator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request describes one completion call.
type Request struct {
	// Model to use; falls back to the client default when empty.
	Model string

	// SystemPrompt is optional.
	SystemPrompt string

	// Prompt is the user message (required).
	Prompt string

	// Schema, when set, constrains the response to a JSON schema via
	// response_format. SchemaName labels it for the provider.
	Schema     map[string]any
	SchemaName string
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	key          string
	defaultModel string
	baseURL      string
	client       *http.Client
}

// NewClient creates a Client. baseURL should not include the
// /chat/completions suffix.
func NewClient(apiKey, defaultModel, baseURL string) *Client {
	if defaultModel == "" {
		defaultModel = "gpt-4o"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		key:          apiKey,
		defaultModel: defaultModel,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 5 * time.Minute},
	}
}

// Complete sends the request and returns the assistant message text.
// An empty assistant message is an error; callers never have to
// distinguish "no reply" from "empty reply".
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("llm: prompt is required")
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]map[string]any, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.Prompt})

	payload := map[string]any{
		"model":    model,
		"stream":   false,
		"messages": messages,
	}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		payload["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"schema": req.Schema,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("llm: timeout after %s (model=%s)", requestTimeout, model)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("llm: status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, truncate(redact(string(rb), c.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("llm: response contained no choices")
	}

	content := strings.TrimSpace(raw.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("llm: empty assistant message")
	}
	return content, nil
}

// CompleteJSON runs a schema-constrained completion and unmarshals the
// reply into out. Code fences around the JSON are tolerated.
func CompleteJSON(ctx context.Context, g Generator, req Request, out any) error {
	content, err := g.Complete(ctx, req)
	if err != nil {
		return err
	}
	clean, err := extractJSONObject(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("llm: unmarshal structured response: %w", err)
	}
	return nil
}

// extractJSONObject locates the JSON object in a model reply, stripping
// markdown fences and surrounding prose.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("llm: empty content")
	}
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("llm: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func redact(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, apiKey, "[REDACTED]")
}
