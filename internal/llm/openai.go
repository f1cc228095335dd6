package llm

import (
	"context"
	"fmt"
	"net/http"
)

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		baseURL:    "https://api.openai.com/v1",
	}
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

// Complete sends messages to OpenAI and asks for a JSON object reply.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	msgs := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = openAIMessage{Role: msg.Role, Content: msg.Content}
	}

	reqBody := openAIRequest{
		Model:          c.model,
		Messages:       msgs,
		MaxTokens:      maxOutputTokens,
		ResponseFormat: &openAIFormat{Type: "json_object"},
	}

	var out openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.httpClient, ProviderOpenAI, c.baseURL+"/chat/completions", headers, reqBody, &out); err != nil {
		return nil, err
	}

	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices")
	}

	return &Response{
		Content:      out.Choices[0].Message.Content,
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		Model:        out.Model,
	}, nil
}

// Provider returns the provider name.
func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// Model returns the model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
