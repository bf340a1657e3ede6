// Package server exposes the analyzer over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xhad/jaundice/internal/logging"
	"github.com/xhad/jaundice/internal/models"
	"github.com/xhad/jaundice/internal/types"
	"github.com/xhad/jaundice/pkg/analyzer"
	"github.com/xhad/jaundice/pkg/report"
	"github.com/xhad/jaundice/pkg/store"
)

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	config   Config
	analyzer *analyzer.Analyzer
	history  types.HistoryStore // nil when history is disabled
	logger   *slog.Logger
	router   *chi.Mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type historyItem struct {
	report.Item
	ElapsedMS int64     `json:"elapsed_ms"`
	CheckedAt time.Time `json:"checked_at"`
}

func New(config Config, a *analyzer.Analyzer, history types.HistoryStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 15 * time.Second
	}

	s := &Server{
		config:   config,
		analyzer: a,
		history:  history,
		logger:   logger.With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleScore)
	r.Get("/health", s.handleHealth)
	r.Get("/history", s.handleHistory)
	r.Get("/ws", s.handleWebSocket)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
// In-flight batches keep running until ShutdownTimeout elapses.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	urls, err := analyzer.ParseURLs(r.URL.Query().Get("urls"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	outcomes, err := s.analyzer.Run(r.Context(), urls)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("client went away", "urls", len(urls), "error", err)
			return
		}
		s.logger.Error("batch failed", "urls", len(urls), "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.record(r.Context(), outcomes)
	s.writeJSON(w, http.StatusOK, report.JSON(outcomes))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, errors.New("history is disabled"))
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("url parameter not found in request"))
		return
	}

	records, err := s.history.Recent(r.Context(), url, store.DefaultRecentLimit)
	if err != nil {
		s.logger.Error("history lookup failed", "url", url, "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, record := range records {
		items = append(items, historyItem{
			Item:      report.NewItem(record.ArticleOutcome),
			ElapsedMS: record.Elapsed.Milliseconds(),
			CheckedAt: record.CheckedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, items)
}

// record appends outcomes to the history log. Failures are logged only; the
// scores have already been computed and are returned regardless.
func (s *Server) record(ctx context.Context, outcomes []models.ArticleOutcome) {
	if s.history == nil || len(outcomes) == 0 {
		return
	}
	if err := s.history.Append(context.WithoutCancel(ctx), outcomes); err != nil {
		s.logger.Warn("failed to record history", "outcomes", len(outcomes), "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
