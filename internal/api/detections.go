package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kamilpajak/authorship/internal/classifier"
	"github.com/kamilpajak/authorship/internal/ingest"
	"github.com/kamilpajak/authorship/internal/store"
	"github.com/kamilpajak/authorship/pkg/models"
)

type detectRequest struct {
	Text            *string `json:"text"`
	ExtraHeuristics *bool   `json:"extra_heuristics,omitempty"`
}

type detectResponse struct {
	ID *uuid.UUID `json:"id,omitempty"`
	*models.DetectionResult
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req detectRequest
	if err := readJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	extra := s.extraHeuristics
	if req.ExtraHeuristics != nil {
		extra = *req.ExtraHeuristics
	}

	s.detect(w, r, *req.Text, extra)
}

func (s *Server) handleDetectFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBodyError(w, err)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	doc, err := ingest.Parse(header.Filename, raw)
	if errors.Is(err, ingest.ErrUnsupported) {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	extra := s.extraHeuristics
	if v := r.FormValue("extra_heuristics"); v != "" {
		extra, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "extra_heuristics must be a boolean")
			return
		}
	}

	s.detect(w, r, doc.Text, extra)
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request, text string, extra bool) {
	resp, err := s.run(r.Context(), text, extra)
	if err != nil {
		status, msg := detectErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// run detects text and records it when history is enabled.
func (s *Server) run(ctx context.Context, text string, extra bool) (detectResponse, error) {
	log := s.log.WithField("request_id", middleware.GetReqID(ctx))

	result, err := s.detector.Detect(ctx, text, extra)
	if err != nil {
		if errors.Is(err, classifier.ErrUnavailable) {
			log.WithError(err).Warn("classifier unavailable")
		} else {
			log.WithError(err).Error("detection failed")
		}
		return detectResponse{}, err
	}

	resp := detectResponse{DetectionResult: result}
	if s.store != nil {
		rec := store.NewRecord(text, result)
		// History is best-effort; the verdict is returned either way.
		if err := s.store.Save(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to save detection")
		} else {
			resp.ID = &rec.ID
		}
	}
	return resp, nil
}

func detectErrorStatus(err error) (int, string) {
	if errors.Is(err, classifier.ErrUnavailable) {
		return http.StatusServiceUnavailable, "classifier unavailable"
	}
	return http.StatusInternalServerError, "detection failed"
}

func (s *Server) handleListDetections(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "detection history is disabled")
		return
	}

	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("failed to list detections")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if records == nil {
		records = []store.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"detections": records})
}

func (s *Server) handleGetDetection(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "detection history is disabled")
		return
	}

	id, err := parseDetectionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid detection ID")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "detection not found")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("failed to get detection")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// parseDetectionID parses the detection ID from the path parameter.
func parseDetectionID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
}
