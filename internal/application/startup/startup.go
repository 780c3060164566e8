// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/container"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/http/server"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

// NewLogger builds the channeled logger described by cfg.
func NewLogger(cfg *config.Config) (*logging.ChanneledLogger, error) {
	logCfg := logging.DefaultLoggerConfig()
	logCfg.JSONFormat = cfg.LogJSON
	logCfg.DefaultLevel = logging.ParseLevel(cfg.LogLevel)
	if cfg.LogDir != "" {
		logCfg.OutputToFile = true
		logCfg.LogDirectory = cfg.LogDir
	}
	return logging.NewChanneledLogger(logCfg)
}

// Initialize performs the startup sequence and serves until SIGINT/SIGTERM.
func Initialize(cfg *config.Config) error {
	start := time.Now().UTC()
	setupGin(cfg)

	logger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Validate configuration
	phase := time.Now()
	if err := cfg.Validate(); err != nil {
		logger.LogStartupPhase("config", time.Since(phase), false)
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.LogStartupPhase("config", time.Since(phase), true)
	if !cfg.PaymentsConfigured() {
		logger.Startup().Warn("STRIPE_SECRET_KEY missing or placeholder; checkout will fail closed")
	}

	// Step 2: Create dependency injection container
	phase = time.Now()
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.LogStartupPhase("container", time.Since(phase), false)
		return err
	}
	logger.LogStartupPhase("container", time.Since(phase), true)

	// Step 3: Prepare report storage and start the retention sweeper
	phase = time.Now()
	if err := os.MkdirAll(cfg.ReportsDir, 0755); err != nil {
		logger.LogStartupPhase("reports", time.Since(phase), false)
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	go appContainer.CleanupWorker.Start(ctx)
	logger.LogStartupPhase("reports", time.Since(phase), true)
	logger.Startup().Info("Retention sweeper started",
		"dir", cfg.ReportsDir,
		"retention", cleanup.NewConfig(cfg).Retention,
		"interval", cfg.ReportSweepInterval)

	// Step 4: Start HTTP server
	httpServer := server.New(appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"environment", cfg.AppEnv,
		"address", httpServer.Addr())

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err)
			return err
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err)
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))
	return nil
}

// Sweep runs one retention sweep and prints a summary to stdout.
func Sweep(ctx context.Context, cfg *config.Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	sweepCfg := cleanup.NewConfig(cfg)
	reporter := cleanup.NewReporter(os.Stdout, isTerminal(os.Stdout))
	reporter.LogHeader(sweepCfg.Dir, sweepCfg.Retention)

	res, err := cleanup.NewWorker(sweepCfg, logger.Cleanup()).Sweep(ctx)
	if err != nil {
		reporter.LogError("Retention sweep failed", err)
		return err
	}
	reporter.LogResult(res)
	return nil
}

func setupGin(cfg *config.Config) {
	switch cfg.GinMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
