package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the analyzer over HTTP.
type Server struct {
	service    *core.AnalyzerService
	httpServer *http.Server
	logger     *zap.Logger
}

// analyzeRequest is the request body for the analyze endpoint
type analyzeRequest struct {
	URL       string   `json:"url"`
	Fragments []string `json:"fragments"`
}

// analyzeResponse is the response body for the analyze endpoint
type analyzeResponse struct {
	Score        *int               `json:"score"`
	Explanations []core.Explanation `json:"explanations,omitempty"`
	Indicator    string             `json:"indicator"`
	Error        string             `json:"error,omitempty"`
	ComputedAt   time.Time          `json:"computed_at"`
}

// NewServer creates a new HTTP analysis server
func NewServer(service *core.AnalyzerService, listenAddr string, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Get("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}
	return s
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP analysis server", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP analysis server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	res := s.service.Analyze(r.Context(), req.URL, req.Fragments)
	score := core.CalculateTrustScore(res)

	resp := analyzeResponse{
		Indicator:  string(core.Indicator(score, res.Error, false)),
		Error:      res.Error,
		ComputedAt: res.ComputedAt,
	}
	if score != nil {
		resp.Score = &score.Score
		resp.Explanations = score.Explanations
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
