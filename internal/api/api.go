// Package api serves detections over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kamilpajak/authorship/internal/auth"
	"github.com/kamilpajak/authorship/internal/store"
	"github.com/kamilpajak/authorship/pkg/models"
)

// DefaultMaxBodyBytes bounds request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// Detector is the detection entry point the server exposes.
type Detector interface {
	Detect(ctx context.Context, text string, extraHeuristics bool) (*models.DetectionResult, error)
}

// Server is the API server.
type Server struct {
	detector        Detector
	store           store.Store
	verifier        auth.TokenVerifier
	ready           func() bool
	log             logrus.FieldLogger
	maxBodyBytes    int64
	extraHeuristics bool
	router          *chi.Mux
}

// Config holds API server configuration. Store, Verifier and Ready are
// optional: without a store history endpoints return 404, without a verifier
// the API is open.
type Config struct {
	Detector        Detector
	Store           store.Store
	Verifier        auth.TokenVerifier
	Ready           func() bool
	Logger          logrus.FieldLogger
	MaxBodyBytes    int64
	ExtraHeuristics bool
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		detector:        cfg.Detector,
		store:           cfg.Store,
		verifier:        cfg.Verifier,
		ready:           cfg.Ready,
		log:             cfg.Logger,
		maxBodyBytes:    cfg.MaxBodyBytes,
		extraHeuristics: cfg.ExtraHeuristics,
		router:          chi.NewRouter(),
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	// Public endpoints
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(auth.Middleware(s.verifier))
		}
		r.Post("/detect", s.handleDetect)
		r.Post("/detect/file", s.handleDetectFile)
		r.Post("/detect/batch", s.handleDetectBatch)
		r.Get("/detections", s.handleListDetections)
		r.Get("/detections/{id}", s.handleGetDetection)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	classifier := "unknown"
	if s.ready != nil {
		classifier = "cold"
		if s.ready() {
			classifier = "ready"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"classifier": classifier,
		"history":    s.store != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
