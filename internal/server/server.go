package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/ogulcanaydogan/viraltrack/pkg/tracker"
)

const maxRequestBytes = 1 << 20

// Pipeline is the part of the tracker exposed over HTTP.
type Pipeline interface {
	SendTest(ctx context.Context) model.DeliveryOutcome
	Analyze(ctx context.Context, item model.CandidateItem) tracker.Analysis
	Stats() tracker.Stats
	Pending(ctx context.Context) (int64, bool)
}

// Server provides liveness, test-notification, analyze and status endpoints.
type Server struct {
	pipeline Pipeline
	mux      *http.ServeMux
	logger   *slog.Logger
}

// NewServer creates an API server.
func NewServer(p Pipeline, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: p,
		mux:      http.NewServeMux(),
		logger:   logger.With("component", "server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /send-test", s.handleSendTest)
	s.mux.HandleFunc("POST /api/v1/notify-test", s.handleSendTest)
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

// withCORS allows any origin and answers preflight requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tracker is running"})
}

func (s *Server) handleSendTest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	outcome := s.pipeline.SendTest(ctx)

	status := http.StatusOK
	if outcome.Status == model.DeliveryFailed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, sendTestResponse{
		Status:  outcome.Status,
		Channel: outcome.Channel,
		Detail:  outcome.Detail,
		Message: tracker.TestMessage,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item := req.item()
	if strings.TrimSpace(item.Text) == "" {
		writeError(w, http.StatusBadRequest, "No caption provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	analysis := s.pipeline.Analyze(ctx, item)

	resp := analyzeResponse{
		Status:         "processed",
		Verdict:        analysis.Verdict,
		Classification: analysis.Classification,
		Message:        analysis.Message,
		Original:       item.Text,
	}
	if !analysis.Verdict.Eligible {
		resp.Status = "ignored"
		resp.Reason = analysis.Verdict.Reason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Stats: s.pipeline.Stats()}
	if n, ok := s.pipeline.Pending(r.Context()); ok {
		resp.Pending = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

// analyzeRequest accepts a full candidate item or a bare caption.
type analyzeRequest struct {
	model.CandidateItem
	Caption string `json:"caption"`
}

func (r analyzeRequest) item() model.CandidateItem {
	item := r.CandidateItem
	if strings.TrimSpace(item.Text) == "" {
		item.Text = r.Caption
	}
	return item.Normalized()
}

type analyzeResponse struct {
	Status         string                      `json:"status"`
	Reason         model.Reason                `json:"reason,omitempty"`
	Verdict        model.EligibilityVerdict    `json:"verdict"`
	Classification *model.ClassificationResult `json:"classification,omitempty"`
	Message        string                      `json:"message,omitempty"`
	Original       string                      `json:"original_caption"`
}

type statusResponse struct {
	tracker.Stats
	Pending *int64 `json:"pending,omitempty"`
}

type sendTestResponse struct {
	Status  model.DeliveryStatus `json:"status"`
	Channel string               `json:"channel,omitempty"`
	Detail  string               `json:"detail,omitempty"`
	Message string               `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
