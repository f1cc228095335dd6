// Package llm provides minimal chat-completion clients for hosted LLM providers.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Default models per provider.
var defaultModels = map[Provider]string{
	ProviderGoogle:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// Environment variables holding provider API keys.
var apiKeyEnv = map[Provider]string{
	ProviderGoogle:    "GOOGLE_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Message is a single chat message. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Response is a completed model reply.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Client is a chat-completion client.
type Client interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
	Provider() Provider
	Model() string
}

// Options configures NewClient. Empty fields fall back to provider defaults.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a client for the given provider. The API key is read from
// the provider's environment variable when opts.APIKey is empty.
func NewClient(provider Provider, opts Options) (Client, error) {
	envKey, ok := apiKeyEnv[provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable required", envKey)
	}

	model := opts.Model
	if model == "" {
		model = defaultModels[provider]
	}

	httpClient := &http.Client{Timeout: opts.Timeout}

	switch provider {
	case ProviderOpenAI:
		c := NewOpenAIClient(apiKey, model)
		c.httpClient = httpClient
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		return c, nil
	case ProviderAnthropic:
		c := NewAnthropicClient(apiKey, model)
		c.httpClient = httpClient
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		return c, nil
	default:
		c := NewGoogleClient(apiKey, model)
		c.httpClient = httpClient
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		return c, nil
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider Provider) string {
	return defaultModels[provider]
}

// maxOutputTokens bounds replies; callers here only need short structured verdicts.
const maxOutputTokens = 256
