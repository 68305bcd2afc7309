// Package server assembles the HTTP API and the campaign monitors on top of
// the engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/api/middleware"
	"github.com/dropforge/airdrop-engine/internal/api/rest"
	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Auth         middleware.AuthConfig
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	engine     *engine.Engine
	monitors   *CampaignMonitors
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, st store.Store, eng *engine.Engine, monitors *CampaignMonitors) *Server {
	return &Server{
		config:   cfg,
		store:    st,
		engine:   eng,
		monitors: monitors,
	}
}

// Start initializes and starts the HTTP server. Monitors for campaigns that
// are already live are resumed before the listener opens.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	restHandler := rest.NewHandler(s.store, s.engine, s.monitors)
	rest.SetupRoutes(router, restHandler, s.config.Auth)

	if s.monitors != nil {
		airdrops, err := s.store.ListActiveAirdrops(ctx)
		if err != nil {
			return fmt.Errorf("failed to list active airdrops: %w", err)
		}
		s.monitors.Resume(ctx, airdrops)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
