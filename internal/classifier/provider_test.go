package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"openai", func(c *Config) { c.Provider = ProviderOpenAI }, ""},
		{"unknown provider", func(c *Config) { c.Provider = "local" }, "unknown classifier provider"},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, "requests_per_second"},
		{"missing label", func(c *Config) { c.Labels.Machine = "" }, "labels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewFactory_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "nope"
	_, err := NewFactory(cfg)
	assert.Error(t, err)
}

func TestNewFactory_WarmsUpHuggingFace(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"label":"Real","score":0.7},{"label":"Fake","score":0.3}]`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "hf_test"
	factory, err := NewFactory(cfg)
	require.NoError(t, err)

	a := NewAdapter(factory, cfg.Labels)
	require.NoError(t, a.Warm(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	out, err := a.Classify(context.Background(), "A passage.")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.AI, 1e-12)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewFactory_WarmupFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Model not found"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	factory, err := NewFactory(cfg)
	require.NoError(t, err)

	a := NewAdapter(factory, cfg.Labels)
	_, err = a.Classify(context.Background(), "A passage.")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "warm-up")
	assert.Contains(t, err.Error(), "Model not found")
}

func TestNewFactory_LLMJudge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"{\"label\":\"Fake\",\"score\":0.9}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "sk-test"
	cfg.BaseURL = server.URL
	cfg.Warmup = false
	factory, err := NewFactory(cfg)
	require.NoError(t, err)

	c, err := factory(context.Background())
	require.NoError(t, err)
	judge, ok := c.(*LLMJudge)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", judge.client.Model())

	preds, err := c.Classify(context.Background(), "A passage.")
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{"Fake", 0.9}}, preds)
}

func TestNewFactory_LLMMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	factory, err := NewFactory(cfg)
	require.NoError(t, err)

	_, err = NewLazy(factory).Get(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}
