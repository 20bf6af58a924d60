// Package httpapi exposes command dispatch over HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"hactl/internal/domain"
)

const (
	RequestIDHeader = "X-Request-ID"
	AuthTokenHeader = "X-Auth-Token"

	maxCommandBytes = 4096
)

// Assistant is the application surface the API serves.
type Assistant interface {
	Handle(ctx context.Context, text string) []domain.Outcome
	State(ctx context.Context, name string) (domain.StateSnapshot, error)
	Entities(ctx context.Context) ([]domain.Entity, error)
}

type Options struct {
	// AuthToken protects /api when set.
	AuthToken string
	// RateLimit is requests per minute per IP on /api. Zero disables it.
	RateLimit int
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Middleware wraps every route, e.g. request metrics.
	Middleware []func(http.Handler) http.Handler
}

type Server struct {
	assistant Assistant
	opts      Options
	logger    *slog.Logger
}

func NewServer(assistant Assistant, opts Options, logger *slog.Logger) *Server {
	return &Server{assistant: assistant, opts: opts, logger: logger}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestID)
	for _, mw := range s.opts.Middleware {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if s.opts.AuthToken != "" {
			r.Use(s.authenticate)
		}
		if s.opts.RateLimit > 0 {
			r.Use(NewRateLimiter(s.opts.RateLimit, time.Minute).Middleware)
		}
		s.RegisterRoutes(r)
	})

	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/commands", s.handleCommands)
	r.Get("/entities", s.handleEntities)
	r.Get("/entities/state", s.handleState)
}

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	RequestID string           `json:"request_id"`
	Outcomes  []domain.Outcome `json:"outcomes"`
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommandBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "command too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req commandRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		text = strings.TrimSpace(req.Text)
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "empty command")
		return
	}

	rid := w.Header().Get(RequestIDHeader)
	s.logger.Info("received command via HTTP", "text", text, "request_id", rid)

	outcomes := s.assistant.Handle(r.Context(), text)

	// Multi-status when only part of a chain succeeded.
	status := http.StatusOK
	for _, out := range outcomes {
		if !out.OK() {
			status = http.StatusMultiStatus
			break
		}
	}
	if len(outcomes) == 1 && !outcomes[0].OK() {
		status = httpStatusOf(outcomes[0].Status)
	}

	writeJSON(w, status, commandResponse{RequestID: rid, Outcomes: outcomes})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.assistant.Entities(r.Context())
	if err != nil {
		s.logger.Error("listing entities", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if d := r.URL.Query().Get("domain"); d != "" {
		filtered := entities[:0:0]
		for _, e := range entities {
			if e.Domain() == d {
				filtered = append(filtered, e)
			}
		}
		entities = filtered
	}

	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'name' is required")
		return
	}

	snap, err := s.assistant.State(r.Context(), name)
	if err != nil {
		writeError(w, httpStatusOf(domain.StatusOf(err)), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AuthTokenHeader)
		// If not in header, check query parameter
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.AuthToken)) != 1 {
			s.logger.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID echoes the caller's X-Request-ID or assigns a fresh one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r)
	})
}

func httpStatusOf(status domain.Status) int {
	switch status {
	case domain.StatusParseError, domain.StatusInvalidAction:
		return http.StatusBadRequest
	case domain.StatusNotFound:
		return http.StatusNotFound
	case domain.StatusDomainMismatch:
		return http.StatusUnprocessableEntity
	case domain.StatusFetchError, domain.StatusCallError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed, forcing close", "error", err)
		return srv.Close()
	}
	return nil
}
