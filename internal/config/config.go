// Package config loads settings from a YAML file, an optional .env file and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kamilpajak/authorship/internal/classifier"
	"github.com/kamilpajak/authorship/internal/detector"
	"github.com/kamilpajak/authorship/internal/logging"
	"github.com/kamilpajak/authorship/internal/store"
)

// Config is the complete application configuration.
type Config struct {
	Classifier classifier.Config `yaml:"classifier"`
	Detector   DetectorConfig    `yaml:"detector"`
	Server     ServerConfig      `yaml:"server"`
	Store      StoreConfig       `yaml:"store"`
	Auth       AuthConfig        `yaml:"auth"`
	Log        logging.Config    `yaml:"log"`
}

// DetectorConfig tunes the ensemble.
type DetectorConfig struct {
	ModelWeight     float64 `yaml:"model_weight"`
	ExtraHeuristics bool    `yaml:"extra_heuristics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// StoreConfig selects the detection history backend. An empty URL disables
// history.
type StoreConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig enables bearer-token auth on the API when Issuer is set.
type AuthConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Classifier: classifier.DefaultConfig(),
		Detector: DetectorConfig{
			ModelWeight:     detector.DefaultModelWeight,
			ExtraHeuristics: true,
		},
		Server: ServerConfig{
			Port:         "8080",
			MaxBodyBytes: 1 << 20,
		},
		Log: logging.Config{Level: "info", Format: logging.FormatText},
	}
}

// Load builds the configuration. path may be empty, in which case
// AUTHORSHIP_CONFIG is consulted; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("AUTHORSHIP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	c := &cfg.Classifier
	c.Provider = getEnvOrDefault("AUTHORSHIP_PROVIDER", c.Provider)
	c.Model = getEnvOrDefault("AUTHORSHIP_MODEL", c.Model)
	if c.APIKey == "" {
		c.APIKey = os.Getenv(apiKeyEnv(c.Provider))
	}

	cfg.Detector.ModelWeight = getEnvFloatOrDefault("AUTHORSHIP_MODEL_WEIGHT", cfg.Detector.ModelWeight)
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Store.URL = getEnvOrDefault("DATABASE_URL", cfg.Store.URL)
	cfg.Auth.Issuer = getEnvOrDefault("AUTH_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = getEnvOrDefault("AUTH_AUDIENCE", cfg.Auth.Audience)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvOrDefault("LOG_FORMAT", cfg.Log.Format)
}

func apiKeyEnv(provider string) string {
	switch provider {
	case classifier.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case classifier.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case classifier.ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "HF_API_TOKEN"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Classifier.Validate(); err != nil {
		return err
	}
	if w := c.Detector.ModelWeight; w < 0 || w > 1 {
		return fmt.Errorf("detector.model_weight must be within [0,1], got %v", w)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server.port %q", c.Server.Port)
	}
	if err := store.ValidateURL(c.Store.URL); err != nil {
		return err
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
