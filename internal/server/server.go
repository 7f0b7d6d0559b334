// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the HTTP server.
	DefaultPort = 8787

	// DefaultMaxBodyBytes caps request bodies when the config leaves it unset.
	DefaultMaxBodyBytes = 4 << 20
)

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats tracks request counters.
type ServerStats struct {
	Requests    atomic.Int64
	Validations atomic.Int64
	Invalid     atomic.Int64
	Diffs       atomic.Int64
	Transforms  atomic.Int64
	Errors      atomic.Int64
	RateLimited atomic.Int64
	StartTime   time.Time
}

// NewServerStats creates a new ServerStats instance.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Requests      int64 `json:"requests"`
	Validations   int64 `json:"validations"`
	Invalid       int64 `json:"invalid"`
	Diffs         int64 `json:"diffs"`
	Transforms    int64 `json:"transforms"`
	Errors        int64 `json:"errors"`
	RateLimited   int64 `json:"rate_limited"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Snapshot returns a copy of the counters.
func (s *ServerStats) Snapshot() StatsResponse {
	return StatsResponse{
		Requests:      s.Requests.Load(),
		Validations:   s.Validations.Load(),
		Invalid:       s.Invalid.Load(),
		Diffs:         s.Diffs.Load(),
		Transforms:    s.Transforms.Load(),
		Errors:        s.Errors.Load(),
		RateLimited:   s.RateLimited.Load(),
		UptimeSeconds: int64(s.Uptime().Seconds()),
	}
}

// Uptime returns the server uptime duration.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Recorder stores run summaries. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Server is the local HTTP API over the toolpanel tools.
type Server struct {
	cfg    config.ServerConfig
	router *http.ServeMux
	server *http.Server

	jsonOpts    jsonfmt.Options
	diffContext int
	version     string

	history Recorder
	limiter *RateLimiter
	stats   *ServerStats
	logger  zerolog.Logger

	mu sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithHistory records every tool request in r.
func WithHistory(r Recorder) Option {
	return func(s *Server) {
		s.history = r
	}
}

// WithJSONOptions sets the default validator options. Requests may override
// individual fields.
func WithJSONOptions(opts jsonfmt.Options) Option {
	return func(s *Server) {
		s.jsonOpts = opts
	}
}

// WithDiffContext sets the default unified diff context.
func WithDiffContext(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.diffContext = n
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a server for cfg. Zero port and body limit fall back
// to defaults.
func NewServer(cfg config.ServerConfig, opts ...Option) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		cfg:         cfg,
		router:      http.NewServeMux(),
		jsonOpts:    jsonfmt.Options{Indent: jsonfmt.DefaultIndent, AutoWrap: true},
		diffContext: diff.DefaultContextLines,
		version:     "dev",
		limiter:     NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		stats:       NewServerStats(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr()
}

// Stats returns the server counters.
func (s *Server) Stats() *ServerStats {
	return s.stats
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /v1/diff", s.handleDiff)
	s.router.HandleFunc("POST /v1/validate", s.handleValidate)
	s.router.HandleFunc("POST /v1/format", s.handleFormat)
	s.router.HandleFunc("POST /v1/compress", s.handleCompress)
	s.router.HandleFunc("POST /v1/locate", s.handleLocate)
	s.router.HandleFunc("POST /v1/text", s.handleText)
	s.router.HandleFunc("POST /v1/base64", s.handleBase64)
	s.router.HandleFunc("POST /v1/time", s.handleTime)

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		RequestIDMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		CORSMiddleware(NewCORSConfig(s.cfg.CORSOrigins)),
		RateLimitMiddleware(s.limiter, s.stats),
		s.countRequests,
	)(s.router)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.stats.Requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// HEALTH & STATS
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	History       bool   `json:"history"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.version,
		History:       s.history != nil,
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
	})
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a graceful
// shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", ln.Addr().String()).Str("version", s.version).Msg("server started")
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}

	snap := s.stats.Snapshot()
	s.logger.Info().
		Int64("requests", snap.Requests).
		Int64("errors", snap.Errors).
		Msg("server shutting down")
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.stats.Errors.Add(1)
	kind := "invalid_request_error"
	if status >= 500 {
		kind = "server_error"
	}
	s.writeJSON(w, status, ErrorBody{Error: ErrorDetail{
		Message:   message,
		Type:      kind,
		Code:      status,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

// decode reads a JSON body into v, enforcing the body limit.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", tooLarge.Limit))
			return false
		}
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// record stores a run summary when history is enabled.
func (s *Server) record(r *http.Request, kind history.Kind, status, summary string, started time.Time) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(r.Context(), history.Entry{
		Kind:     kind,
		Source:   "http",
		Status:   status,
		Summary:  summary,
		Duration: time.Since(started),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to record history")
	}
}
