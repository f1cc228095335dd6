package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/authorship/pkg/models"
)

// MaxBatchSize bounds the number of texts in one batch request.
const MaxBatchSize = 100

// Batch event types.
const (
	EventResult = "result"
	EventError  = "error"
	EventDone   = "done"
)

// BatchEvent is one Server-Sent Event of a batch detection stream.
type BatchEvent struct {
	Type    string                  `json:"type"`
	Index   int                     `json:"index"`
	ID      *uuid.UUID              `json:"id,omitempty"`
	Result  *models.DetectionResult `json:"result,omitempty"`
	Message string                  `json:"message,omitempty"`
	Count   int                     `json:"count,omitempty"`
}

type batchRequest struct {
	Texts           []string `json:"texts"`
	ExtraHeuristics *bool    `json:"extra_heuristics,omitempty"`
}

// sseEmitter writes events as Server-Sent Events.
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEEmitter returns nil if the writer does not support flushing.
func newSSEEmitter(w http.ResponseWriter) *sseEmitter {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil
	}
	return &sseEmitter{w: w, flusher: f}
}

func (e *sseEmitter) Emit(ev BatchEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(e.w, "data: %s\n\n", data)
	e.flusher.Flush()
}

// handleDetectBatch streams one event per text, in input order, then a done
// event. A failing text does not stop the batch.
func (s *Server) handleDetectBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req batchRequest
	if err := readJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts is required")
		return
	}
	if len(req.Texts) > MaxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d texts per batch", MaxBatchSize))
		return
	}

	extra := s.extraHeuristics
	if req.ExtraHeuristics != nil {
		extra = *req.ExtraHeuristics
	}

	emitter := newSSEEmitter(w)
	if emitter == nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	for i, text := range req.Texts {
		if ctx.Err() != nil {
			return
		}
		resp, err := s.run(ctx, text, extra)
		if err != nil {
			_, msg := detectErrorStatus(err)
			emitter.Emit(BatchEvent{Type: EventError, Index: i, Message: msg})
			continue
		}
		emitter.Emit(BatchEvent{Type: EventResult, Index: i, ID: resp.ID, Result: resp.DetectionResult})
	}
	emitter.Emit(BatchEvent{Type: EventDone, Count: len(req.Texts)})
}
