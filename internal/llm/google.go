package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// GoogleClient talks to the Gemini generateContent API.
type GoogleClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleClient creates a new Gemini client.
func NewGoogleClient(apiKey, model string) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
	}
}

type googleRequest struct {
	Contents          []googleContent        `json:"contents"`
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type googleResponse struct {
	Candidates []struct {
		Content      googleContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Complete sends messages to Gemini. Gemini names the assistant role "model"
// and takes system text as a separate instruction.
func (c *GoogleClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	var system []googlePart
	contents := make([]googleContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, googlePart{Text: msg.Content})
		case "assistant":
			contents = append(contents, googleContent{Role: "model", Parts: []googlePart{{Text: msg.Content}}})
		default:
			contents = append(contents, googleContent{Role: msg.Role, Parts: []googlePart{{Text: msg.Content}}})
		}
	}

	reqBody := googleRequest{
		Contents: contents,
		GenerationConfig: googleGenerationConfig{
			MaxOutputTokens:  maxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	}
	if len(system) > 0 {
		reqBody.SystemInstruction = &googleContent{Parts: system}
	}

	var out googleResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	headers := map[string]string{"x-goog-api-key": c.apiKey}
	if err := postJSON(ctx, c.httpClient, ProviderGoogle, url, headers, reqBody, &out); err != nil {
		return nil, err
	}

	if len(out.Candidates) == 0 {
		return nil, fmt.Errorf("google: no response candidates")
	}

	var b strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("google: empty response (finishReason=%s)", out.Candidates[0].FinishReason)
	}

	return &Response{
		Content:      b.String(),
		InputTokens:  out.UsageMetadata.PromptTokenCount,
		OutputTokens: out.UsageMetadata.CandidatesTokenCount,
		Model:        c.model,
	}, nil
}

// Provider returns the provider name.
func (c *GoogleClient) Provider() Provider {
	return ProviderGoogle
}

// Model returns the model name.
func (c *GoogleClient) Model() string {
	return c.model
}
