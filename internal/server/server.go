// Package server implements the qn-sync HTTP API: authoritative note
// storage, the REST surface the client drains pushes against, and a
// websocket change feed that nudges connected devices to pull.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

// Config holds server settings. Values come from flags with QN_SYNC_*
// environment overrides applied by ConfigFromEnv.
type Config struct {
	ListenAddr string
	DBPath     string
	AuthKey    string // empty disables auth (local development only)
}

// ConfigFromEnv applies QN_SYNC_* environment overrides to cfg.
func ConfigFromEnv(cfg Config) Config {
	if v := os.Getenv("QN_SYNC_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("QN_SYNC_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("QN_SYNC_AUTH_KEY"); v != "" {
		cfg.AuthKey = v
	}
	return cfg
}

// Server is the qn-sync HTTP server.
type Server struct {
	config Config
	http   *http.Server
	db     *NotesDB
	hub    *Hub
}

// NewServer creates a Server with the given config and storage.
func NewServer(cfg Config, db *NotesDB) *Server {
	s := &Server{
		config: cfg,
		db:     db,
		hub:    NewHub(),
	}
	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	slog.Info("qn-sync listening", "addr", ln.Addr().String())

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server and disconnects watch clients.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.hub.CloseAll()
	return err
}

// Handler returns the server's HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /v1/notes", s.requireAuth(s.handleInsertNote))
	mux.HandleFunc("GET /v1/notes", s.requireAuth(s.handleListNotes))
	mux.HandleFunc("PUT /v1/notes/{id}", s.requireAuth(s.handleUpdateNote))
	mux.HandleFunc("DELETE /v1/notes/{id}", s.requireAuth(s.handleDeleteNote))
	mux.HandleFunc("GET /v1/notes/watch", s.requireAuth(s.hub.ServeWatch))

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware, loggingMiddleware, maxBytesMiddleware(1<<20))
}

// handleHealth returns a health check response, pinging the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
