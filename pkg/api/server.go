/*
 * Copyright 2025 Wirelark Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for the dashboard.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	wlHttp "github.com/wirelark/fortidash/pkg/http"
	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/models"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Server serves the dashboard REST and WebSocket API.
type Server struct {
	engine      TopologyProvider
	router      *mux.Router
	hub         *streamHub
	apiKey      string
	corsOrigins []string
	version     string
	startedAt   time.Time
	logger      logger.Logger
	httpServer  *http.Server
}

// NewServer creates a new API server instance with the given options.
func NewServer(eng TopologyProvider, options ...func(*Server)) *Server {
	s := &Server{
		engine:    eng,
		router:    mux.NewRouter(),
		version:   "dev",
		startedAt: time.Now(),
		logger:    logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.hub = newStreamHub(s.logger)
	s.setupRoutes()

	return s
}

// WithAPIKey protects the /api routes with a shared key.
func WithAPIKey(key string) func(*Server) {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithAllowedOrigins restricts CORS and WebSocket origins.
func WithAllowedOrigins(origins []string) func(*Server) {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithVersion sets the version reported by /api/status.
func WithVersion(version string) func(*Server) {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithLogger sets the logger for the API server.
func WithLogger(log logger.Logger) func(*Server) {
	return func(s *Server) {
		if log != nil {
			s.logger = log
		}
	}
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return wlHttp.CommonMiddleware(next, s.corsOrigins, s.logger)
	})
	s.router.Use(wlHttp.RequestIDMiddleware)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	if s.apiKey != "" {
		apiRouter.Use(wlHttp.APIKeyMiddleware(s.apiKey, s.logger))
	}

	apiRouter.HandleFunc("/topology", s.getTopology).Methods(http.MethodGet)
	apiRouter.HandleFunc("/topology/refresh", s.refreshTopology).Methods(http.MethodPost)
	apiRouter.HandleFunc("/connected-devices", s.getConnectedDevices).Methods(http.MethodGet)
	apiRouter.HandleFunc("/fortiswitches", s.getSwitches).Methods(http.MethodGet)
	apiRouter.HandleFunc("/fortiaps", s.getAccessPoints).Methods(http.MethodGet)
	apiRouter.HandleFunc("/history", s.getHistory).Methods(http.MethodGet)
	apiRouter.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
}

// Router returns the underlying router, for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Broadcast pushes a message to all connected WebSocket clients.
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.hub.broadcast(models.StreamMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Start serves the API on addr until ctx is canceled, then shuts down
// gracefully, closing any open stream connections.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	s.hub.close()

	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) encodeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
