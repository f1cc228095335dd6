package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		baseURL:    "https://api.anthropic.com/v1",
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends messages to Anthropic. System messages are lifted into the
// top-level system prompt.
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	var system []string
	msgs := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		msgs = append(msgs, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("anthropic: at least one non-system message required")
	}

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		System:    strings.Join(system, "\n\n"),
		Messages:  msgs,
	}

	var out anthropicResponse
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := postJSON(ctx, c.httpClient, ProviderAnthropic, c.baseURL+"/messages", headers, reqBody, &out); err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, part := range out.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}

	return &Response{
		Content:      b.String(),
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		Model:        out.Model,
	}, nil
}

// Provider returns the provider name.
func (c *AnthropicClient) Provider() Provider {
	return ProviderAnthropic
}

// Model returns the model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
