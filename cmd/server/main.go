// Package main is the entry point for the Folio portfolio calculation server.
// It serves buy-and-hold simulations, return and risk statistics, monthly
// return heatmaps and benchmark comparisons over stored daily closing prices,
// and manages saved portfolios with version history.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/foliolab/folio/internal/calccache"
	"github.com/foliolab/folio/internal/config"
	"github.com/foliolab/folio/internal/database"
	"github.com/foliolab/folio/internal/modules/analytics"
	"github.com/foliolab/folio/internal/modules/portfolios"
	"github.com/foliolab/folio/internal/modules/prices"
	"github.com/foliolab/folio/internal/modules/render"
	"github.com/foliolab/folio/internal/scheduler"
	"github.com/foliolab/folio/internal/server"
	"github.com/foliolab/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Bool("cache_enabled", cfg.CacheEnabled).
		Msg("Starting Folio")

	// Open the three application databases
	pricesDB, err := database.New(database.Config{
		Name: "prices",
		Path: filepath.Join(cfg.DataDir, "prices.db"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open prices database")
	}
	defer pricesDB.Close()

	portfoliosDB, err := database.New(database.Config{
		Name: "portfolios",
		Path: filepath.Join(cfg.DataDir, "portfolios.db"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolios database")
	}
	defer portfoliosDB.Close()

	cacheDB, err := database.New(database.Config{
		Name:    "cache",
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{pricesDB, portfoliosDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	// Repositories and services
	pricesRepo := prices.NewRepository(pricesDB.Conn(), cfg.BenchmarkSymbol, log)
	cacheRepo := calccache.NewRepository(cacheDB.Conn())

	analyticsSvc := analytics.NewService(pricesRepo, log)
	if cfg.CacheEnabled {
		analyticsSvc = analyticsSvc.WithCache(cacheRepo, cfg.CacheTTL)
	}

	portfoliosRepo := portfolios.NewRepository(portfoliosDB.Conn(), log)
	portfoliosSvc := portfolios.NewService(portfoliosRepo, analyticsSvc, log)
	renderSvc := render.NewService(analyticsSvc, log)

	// Background maintenance jobs
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewCacheCleanupJob(cacheRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	walJob := scheduler.NewWALCheckpointJob([]*database.DB{pricesDB, portfoliosDB, cacheDB}, log)
	if err := sched.AddJob("0 3 * * *", walJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Cfg:              cfg,
		PricesDB:         pricesDB,
		PortfoliosDB:     portfoliosDB,
		CacheDB:          cacheDB,
		PricesRepo:       pricesRepo,
		AnalyticsService: analyticsSvc,
		PortfoliosRepo:   portfoliosRepo,
		PortfoliosSvc:    portfoliosSvc,
		RenderService:    renderSvc,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Folio stopped")
}
