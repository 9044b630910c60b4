// Package server exposes the extraction pipeline and the address
// normalizer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/estrattori/eventi/internal/address"
	"github.com/estrattori/eventi/internal/annotate"
	"github.com/estrattori/eventi/internal/model"
	"github.com/estrattori/eventi/internal/pipeline"
	"github.com/estrattori/eventi/internal/worker"
)

const maxBodyBytes = 4 << 20

// Server wires the HTTP routes to the pipeline collaborators
type Server struct {
	pipeline   *pipeline.Pipeline
	batch      *worker.BatchProcessor
	normalizer *address.Normalizer
	lazy       *annotate.Lazy
	backend    string
	verbose    bool
}

// New creates the HTTP server facade
func New(p *pipeline.Pipeline, batch *worker.BatchProcessor, lazy *annotate.Lazy, backend string, verbose bool) *Server {
	return &Server{
		pipeline:   p,
		batch:      batch,
		normalizer: address.NewNormalizer(),
		lazy:       lazy,
		backend:    backend,
		verbose:    verbose,
	}
}

// Handler returns the route mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.handleEvents)
	mux.HandleFunc("POST /events/batch", s.handleEventsBatch)
	mux.HandleFunc("POST /normalize", s.handleNormalize)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe starts serving on addr
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.verbose {
		fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
	}
	return srv.ListenAndServe()
}

type eventsRequest struct {
	Text string                 `json:"text"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

type eventsResponse struct {
	OK        bool          `json:"ok"`
	Events    []model.Event `json:"events,omitempty"`
	Error     string        `json:"error,omitempty"`
	LatencyMS int64         `json:"latency_ms"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req eventsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	events, err := s.pipeline.Extract(r.Context(), req.Text, req.Meta)
	if err != nil {
		writeJSON(w, statusForError(err), eventsResponse{
			OK:        false,
			Error:     err.Error(),
			LatencyMS: time.Since(started).Milliseconds(),
		})
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		OK:        true,
		Events:    events,
		LatencyMS: time.Since(started).Milliseconds(),
	})
}

type batchRequest struct {
	Items []model.ExtractItem `json:"items"`
}

type batchResponse struct {
	OK        bool                  `json:"ok"`
	Results   []model.ExtractResult `json:"results"`
	LatencyMS int64                 `json:"latency_ms"`
}

func (s *Server) handleEventsBatch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results := s.batch.Process(r.Context(), req.Items)
	writeJSON(w, http.StatusOK, batchResponse{
		OK:        true,
		Results:   results,
		LatencyMS: time.Since(started).Milliseconds(),
	})
}

type normalizeResponse struct {
	OK        bool          `json:"ok"`
	Address   model.Address `json:"address"`
	LatencyMS int64         `json:"latency_ms"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req address.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	addr := s.normalizer.Normalize(req)
	writeJSON(w, http.StatusOK, normalizeResponse{
		OK:        true,
		Address:   addr,
		LatencyMS: time.Since(started).Milliseconds(),
	})
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleHealth triggers lazy annotator initialization and reports degraded
// health instead of crashing when the backend cannot load
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.lazy.Ready(); err != nil {
		writeJSON(w, http.StatusOK, healthResponse{OK: false, Error: err.Error()})
		return
	}
	if _, err := s.lazy.Annotate(r.Context(), "Ping di prova."); err != nil {
		writeJSON(w, http.StatusOK, healthResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Backend: s.backend})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput), errors.Is(err, pipeline.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, annotate.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": "invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintf(os.Stderr, "write response: %v\n", err)
	}
}
