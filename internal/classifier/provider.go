package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kamilpajak/authorship/internal/llm"
)

// Supported providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = string(llm.ProviderOpenAI)
	ProviderAnthropic   = string(llm.ProviderAnthropic)
	ProviderGoogle      = string(llm.ProviderGoogle)
)

// Providers lists the accepted provider names.
var Providers = []string{ProviderHuggingFace, ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

// Config selects and tunes the external classifier.
type Config struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Warmup            bool          `yaml:"warmup"`
	Labels            Labels        `yaml:"labels"`
}

// DefaultConfig uses the hosted RoBERTa detector.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderHuggingFace,
		Model:    DefaultHuggingFaceModel,
		Timeout:  60 * time.Second,
		Warmup:   true,
		Labels:   DefaultLabels(),
	}
}

// Validate checks the provider name and numeric limits.
func (c Config) Validate() error {
	known := false
	for _, p := range Providers {
		if c.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown classifier provider %q (want one of %s)", c.Provider, strings.Join(Providers, ", "))
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if c.Labels.Human == "" || c.Labels.Machine == "" {
		return fmt.Errorf("classifier labels must name both the human and machine class")
	}
	return nil
}

// NewFactory returns a Factory that builds the configured classifier. The
// returned factory performs one warm-up call when cfg.Warmup is set, so a
// model that cannot load fails at initialization rather than mid-request.
func NewFactory(cfg Config) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return func(ctx context.Context) (Classifier, error) {
		c, err := build(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Warmup {
			if _, err := c.Classify(ctx, "Warm-up request to load the model."); err != nil {
				return nil, fmt.Errorf("warm-up %s/%s: %w", cfg.Provider, cfg.Model, err)
			}
		}
		return c, nil
	}, nil
}

func build(cfg Config) (Classifier, error) {
	switch cfg.Provider {
	case ProviderHuggingFace:
		return NewHuggingFace(cfg.APIKey, cfg.Model,
			WithBaseURL(cfg.BaseURL),
			WithTimeout(cfg.Timeout),
			WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		), nil
	default:
		model := cfg.Model
		if model == DefaultHuggingFaceModel {
			model = ""
		}
		client, err := llm.NewClient(llm.Provider(cfg.Provider), llm.Options{
			APIKey:  cfg.APIKey,
			Model:   model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewLLMJudge(client), nil
	}
}
