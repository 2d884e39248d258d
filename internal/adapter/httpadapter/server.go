package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// LatestProvider returns the most recently loaded polling cycle.
type LatestProvider interface {
	Latest() []domain.StationCategory
}

// HistoryReader returns stored classifications for a station, newest first.
type HistoryReader interface {
	History(ctx context.Context, station string, limit int) ([]history.Record, error)
}

// Server exposes health, readiness, metrics, and category HTTP endpoints.
type Server struct {
	httpServer *http.Server
	latest     LatestProvider
	history    HistoryReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /categories and /stations/{station}/history routes. A nil HistoryReader
// makes the history route answer 404.
func NewServer(addr string, ready sharedobs.ReadinessChecker, latest LatestProvider, hist HistoryReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		latest:  latest,
		history: hist,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /stations/{station}/history", s.handleHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.latest.Latest())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	station := strings.ToUpper(r.PathValue("station"))
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	records, err := s.history.History(r.Context(), station, limit)
	if err != nil {
		s.logger.Error("history query failed", "station", station, "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
