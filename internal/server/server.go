// Package server provides the HTTP surface of librasio: stream control,
// label history, live labels over websocket, the annotated MJPEG preview and
// Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/ayusman/librasio/internal/metrics"
	"github.com/ayusman/librasio/internal/server/api"
	"github.com/ayusman/librasio/internal/store"
	"go.uber.org/zap"
)

// Config holds the server configuration. Every field is optional; routes
// whose dependency is missing are not registered.
type Config struct {
	StaticDir string
	Streams   api.StreamController
	Store     *store.Store
	Hub       *LabelHub
	Tap       *app.FrameTap
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Server represents the HTTP server for the librasio application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *zap.Logger

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger.OrNop(config.Logger),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Streams != nil {
		h := api.NewStreamHandler(s.config.Streams)
		s.mux.Handle("/api/streams", h)
		s.mux.Handle("/api/streams/", h)
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/history", api.NewHistoryHandler(s.config.Store))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/labels", s.config.Hub)
	}

	if s.config.Tap != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Tap))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Active  string `json:"active,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Streams != nil {
		enabled := s.config.Streams.IsEnabled()
		response.Enabled = &enabled
		for _, st := range s.config.Streams.Streams() {
			if st.Active {
				response.Active = string(st.ID)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()
	s.logger.Info("http server listening", zap.String("addr", addr))

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for handlers until ctx
// expires. Streaming handlers are cut off by the context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
