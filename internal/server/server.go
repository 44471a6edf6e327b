// Package server exposes the automation over HTTP: workflow triggers,
// settings CRUD, a websocket event stream, health and metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"portalsync/internal/notify"
	"portalsync/internal/settings"
)

// WorkflowRunner is the runner surface the server drives.
type WorkflowRunner interface {
	Export(ctx context.Context) (notify.Result, error)
	Import(ctx context.Context, filePath string, thenSales bool) (notify.Result, error)
	SalesDownload(ctx context.Context) (notify.Result, error)
}

// Server is the HTTP server for the automation API.
type Server struct {
	runner   WorkflowRunner
	settings *settings.Store
	events   *notify.Broadcaster
	log      *slog.Logger

	// running guards the workflow endpoints so a request is rejected with
	// 409 instead of queueing behind a run that may last hours.
	running atomic.Bool

	httpServer *http.Server
}

// New creates the server. metricsHandler serves GET /metrics and may be nil
// when metrics are disabled.
func New(addr string, r WorkflowRunner, st *settings.Store, ev *notify.Broadcaster, metricsHandler http.Handler, log *slog.Logger) *Server {
	s := &Server{
		runner:   r,
		settings: st,
		events:   ev,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.HandleFunc("POST /workflows/export", s.handleExport)
	mux.HandleFunc("POST /workflows/import", s.handleImport)
	mux.HandleFunc("POST /workflows/sales", s.handleSales)

	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handlePutSettings)

	mux.HandleFunc("GET /events", s.handleEvents)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /events is a long-lived websocket.
	}
	return s
}

// Handler returns the route table, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.log.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
