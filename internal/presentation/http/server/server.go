// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/container"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/http/routes"
)

// Server wraps the HTTP server with configuration and dependency injection
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New creates a new HTTP server instance with dependency injection
func New(container *container.Container) *Server {
	cfg := container.Config
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Addr is the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.container.Logger.System().Info("Starting HTTP server", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
