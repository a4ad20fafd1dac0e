// Package httpapi exposes a console session over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zberg/go-easyremote/internal/command"
	"github.com/zberg/go-easyremote/internal/metrics"
	"github.com/zberg/go-easyremote/pkg/easyremote"
)

// maxBody bounds command payloads.
const maxBody = 4096

// Server serves the control API.
type Server struct {
	log        *slog.Logger
	dispatcher *command.Dispatcher
	metrics    *metrics.Metrics
	srv        *http.Server
}

// New builds a server listening on addr. m may be nil, in which case
// /metrics is not mounted.
func New(log *slog.Logger, addr string, d *command.Dispatcher, m *metrics.Metrics) *Server {
	s := &Server{
		log:        log.With("module", "http"),
		dispatcher: d,
		metrics:    m,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/controls", s.listControls)
	r.Get("/controls/{name}", s.getControl)
	r.Post("/controls/{name}", s.postControl)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listControls(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatcher.Controls())
}

func (s *Server) getControl(w http.ResponseWriter, r *http.Request) {
	info, err := s.dispatcher.Control(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) postControl(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := command.Decode(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), name, p); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, easyremote.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, command.ErrInvalidPayload), errors.Is(err, command.ErrUnsupported),
		errors.Is(err, easyremote.ErrInvalidColor):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
