// Package app wires configuration into a ready-to-use detector, history store
// and HTTP handler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kamilpajak/authorship/internal/api"
	"github.com/kamilpajak/authorship/internal/auth"
	"github.com/kamilpajak/authorship/internal/classifier"
	"github.com/kamilpajak/authorship/internal/config"
	"github.com/kamilpajak/authorship/internal/detector"
	"github.com/kamilpajak/authorship/internal/store"
)

// App owns the long-lived services. Build it once at startup.
type App struct {
	Config   *config.Config
	Log      logrus.FieldLogger
	Adapter  *classifier.Adapter
	Detector *detector.Detector

	// Optional; nil when not configured.
	Store    store.Store
	Verifier *auth.Verifier
}

// Options control which optional services New starts.
type Options struct {
	// OpenStore connects to cfg.Store.URL when it is set.
	OpenStore bool
	// Auth starts the JWKS verifier when cfg.Auth.Issuer is set.
	Auth bool
}

// New validates cfg and builds the services. The classifier itself is not
// loaded until first use or Warm.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	factory, err := classifier.NewFactory(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	adapter := classifier.NewAdapter(factory, cfg.Classifier.Labels)

	a := &App{
		Config:  cfg,
		Log:     log,
		Adapter: adapter,
		Detector: detector.New(adapter,
			detector.WithModelWeight(cfg.Detector.ModelWeight),
			detector.WithLogger(log),
		),
	}

	if opts.OpenStore && cfg.Store.URL != "" {
		a.Store, err = store.Open(ctx, cfg.Store.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	if opts.Auth && cfg.Auth.Issuer != "" {
		a.Verifier, err = auth.NewVerifier(ctx, auth.Config{
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create auth verifier: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"provider": cfg.Classifier.Provider,
		"model":    cfg.Classifier.Model,
		"history":  a.Store != nil,
		"auth":     a.Verifier != nil,
	}).Debug("services ready")

	return a, nil
}

// Handler returns the HTTP API for this App.
func (a *App) Handler() http.Handler {
	cfg := api.Config{
		Detector:        a.Detector,
		Store:           a.Store,
		Ready:           a.Adapter.Ready,
		Logger:          a.Log,
		MaxBodyBytes:    a.Config.Server.MaxBodyBytes,
		ExtraHeuristics: a.Config.Detector.ExtraHeuristics,
	}
	if a.Verifier != nil {
		cfg.Verifier = a.Verifier
	}
	return api.NewServer(cfg)
}

// Close releases the store and verifier.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.WithError(err).Warn("failed to close store")
		}
	}
	if a.Verifier != nil {
		a.Verifier.Close()
	}
}
