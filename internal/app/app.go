// Package app wires configuration, storage, clients, and services into a
// single App used by cmd/paperhouse-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asheeshm/paperhouse/internal/clients/oracle"
	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/services/earnings"
	"github.com/asheeshm/paperhouse/internal/services/leaderboard"
	"github.com/asheeshm/paperhouse/internal/services/valuation"
	"github.com/asheeshm/paperhouse/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	Oracle             interfaces.PriceOracle
	ValuationService   interfaces.ValuationService
	EarningsService    interfaces.EarningsService
	LeaderboardService interfaces.LeaderboardService
	LeaderboardHub     *leaderboard.WSHub
	StartupTime        time.Time

	flusherCancel context.CancelFunc
	flusherDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be empty,
// in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, PAPERHOUSE_CONFIG, then
	// binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("PAPERHOUSE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "paperhouse.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/paperhouse.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	for _, area := range []*common.AreaConfig{&config.Storage.Internal, &config.Storage.Earnings, &config.Storage.Holdings} {
		if area.Path != "" && !filepath.IsAbs(area.Path) {
			area.Path = filepath.Join(binDir, area.Path)
		}
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Oracle.BaseURL == "" {
		logger.Warn().Msg("Price oracle URL not configured - valuations will degrade to average cost")
	}
	oracleClient := oracle.NewClient(config.Oracle.BaseURL, config.Oracle.APIKey,
		oracle.WithLogger(logger),
		oracle.WithRateLimit(config.Oracle.RateLimit),
		oracle.WithTimeout(config.Oracle.GetTimeout()),
	)

	valuationService := valuation.NewService(storageManager.HoldingsStore(), oracleClient, logger)
	earningsService := earnings.NewService(storageManager.EarningsStore(), valuationService, storageManager.InternalStore(), logger)
	leaderboardService := leaderboard.NewService(earningsService, storageManager.InternalStore(), logger)
	hub := leaderboard.NewWSHub(logger)

	// Warm the cache so post-restart reads are served from memory.
	if err := earningsService.WarmCache(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Earnings cache warm failed; aggregates will lazy-load")
	}

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		Oracle:             oracleClient,
		ValuationService:   valuationService,
		EarningsService:    earningsService,
		LeaderboardService: leaderboardService,
		LeaderboardHub:     hub,
		StartupTime:        startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartBackground launches the WebSocket hub and the periodic flusher.
func (a *App) StartBackground() {
	go a.LeaderboardHub.Run()

	flusherCtx, cancel := context.WithCancel(context.Background())
	a.flusherCancel = cancel
	a.flusherDone = make(chan struct{})
	go func() {
		defer close(a.flusherDone)
		runFlusher(flusherCtx, a.EarningsService, a.LeaderboardService, a.LeaderboardHub, a.Logger, a.Config.Earnings.GetFlushInterval())
	}()
}

// Close releases all resources. Shutdown order: stop the flusher, run one
// final synchronous flush so buffered profit survives the restart, stop the
// hub, close storage.
func (a *App) Close() {
	if a.flusherCancel != nil {
		a.flusherCancel()
		<-a.flusherDone
		a.flusherCancel = nil
	}

	if a.EarningsService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := a.EarningsService.FlushAll(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Final earnings flush incomplete")
		}
		cancel()
	}

	if a.LeaderboardHub != nil {
		a.LeaderboardHub.Stop()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
