package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/api/middleware"
	"github.com/dropforge/airdrop-engine/internal/api/server"
	"github.com/dropforge/airdrop-engine/internal/config"
	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/feeds"
	"github.com/dropforge/airdrop-engine/internal/ledger"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/monitor"
	"github.com/dropforge/airdrop-engine/internal/oracle"
	"github.com/dropforge/airdrop-engine/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting airdrop engine API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if err := store.AutoMigrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database schema", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Ledger.RequestTimeout)

	// Initialize store and external services
	dataStore := store.NewPGStore(db, clock)
	tokenLedger := ledger.NewMetalLedger(
		cfg.Ledger.BaseURL,
		cfg.Ledger.APIKey,
		cfg.Ledger.PollInterval,
		cfg.Ledger.PollAttempts,
		cfg.Ledger.RequestTimeout,
		httpClient,
		jsonAdapter,
		clock,
	)
	eligibilityOracle := oracle.NewOpenRouterOracle(
		cfg.Oracle.BaseURL,
		cfg.Oracle.APIKey,
		cfg.Oracle.Model,
		cfg.Oracle.RequestTimeout,
		httpClient,
		jsonAdapter,
	)

	eng := engine.New(dataStore, tokenLedger, eligibilityOracle, clock)

	// Seed the default token so campaigns can be created out of the box
	seedDefaultToken(ctx, eng, dataStore, cfg.Seed)

	// Campaign monitors poll X for social campaigns
	xFeed := feeds.NewXFeed(feeds.XConfig{
		BaseURL:     cfg.XFeed.BaseURL,
		BearerToken: cfg.XFeed.BearerToken,
	}, httpClient, clock)
	monitorManager := monitor.NewManager(clock)
	defer monitorManager.StopAll()
	monitors := server.NewCampaignMonitors(monitorManager, xFeed, eng, cfg.XFeed.PollInterval)

	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	srv := server.New(serverConfig, dataStore, eng, monitors)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}

// seedDefaultToken mints the configured default token unless it already
// exists. Failure is not fatal: tokens can still be minted over the API.
func seedDefaultToken(ctx context.Context, eng *engine.Engine, dataStore store.Store, seed config.SeedConfig) {
	if seed.TokenSymbol == "" {
		return
	}

	existing, err := dataStore.GetTokenBySymbol(ctx, seed.TokenSymbol)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to check seed token", zap.Error(err))
		return
	}
	if existing != nil {
		return
	}

	token, err := eng.CreateToken(ctx, seed.TokenName, seed.TokenSymbol, seed.TokenSupply)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to seed default token",
			zap.String("symbol", seed.TokenSymbol),
			zap.Error(err))
		return
	}
	logger.InfoCtx(ctx, "Seeded default token",
		zap.String("symbol", token.Symbol),
		zap.Int64("total_supply", token.TotalSupply))
}
