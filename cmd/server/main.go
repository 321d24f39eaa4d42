package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/config"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/database"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Open database connection and run migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	assetRepo := repository.NewAssetRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	settingService, err := service.NewSettingService(settingRepo, cfg.Secrets.FernetKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize setting service")
	}

	feedKey, err := settingService.FeedAPIKey()
	if err != nil {
		log.Warn().Err(err).Msg("stored feed key unavailable, continuing without it")
	}
	feedClient := pricefeed.New(cfg.PriceFeed.BaseURL, feedKey)

	assetService := service.NewAssetService(assetRepo)
	targetService := service.NewTargetService(db, targetRepo, walletRepo, assetRepo)
	walletService := service.NewWalletService(walletRepo, targetRepo)
	transactionService := service.NewTransactionService(db, transactionRepo, assetRepo, targetRepo, walletService)
	reportService := service.NewReportService(assetRepo, walletRepo, targetRepo, transactionRepo, priceRepo)
	priceService := service.NewPriceService(assetRepo, priceRepo, transactionRepo, feedClient)
	dipService := service.NewDipService(feedClient)

	// Scheduled daily price refresh
	scheduler := cron.New()
	if cfg.PriceFeed.RefreshEnabled {
		_, err := scheduler.AddFunc(cfg.PriceFeed.RefreshSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			result, err := priceService.RefreshAll(ctx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled price refresh failed")
				return
			}
			log.Info().
				Int("refreshed", result.Refreshed).
				Int("skipped", result.Skipped).
				Int("failed", len(result.Failed)).
				Msg("scheduled price refresh complete")
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.PriceFeed.RefreshSchedule).Msg("invalid refresh schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Asset:       assetService,
		Target:      targetService,
		Wallet:      walletService,
		Transaction: transactionService,
		Report:      reportService,
		Price:       priceService,
		Dip:         dipService,
		Setting:     settingService,
		FeedClient:  feedClient,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
