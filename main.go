package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"any-democrat/config"
	"any-democrat/server"
	"any-democrat/services"
	"any-democrat/sheets"
	"any-democrat/storage"
	"any-democrat/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("=== Any Democrat starting ===")

	var source services.FeedSource
	if cfg.UseRemoteFeeds() {
		logger.Info("Feeds: remote | candidates: %s | states: %s", cfg.CandidatesFeedURL, cfg.StatesFeedURL)
		source = services.NewRemoteSource(services.NewLoader(cfg.HTTPTimeout(), logger),
			cfg.CandidatesFeedURL, cfg.StatesFeedURL)
	} else {
		if cfg.StatesCSVURL == "" || cfg.CandidatesCSVURL == "" {
			logger.Error("STATES_CSV_URL and CANDIDATES_CSV_URL are required unless CANDIDATES_FEED_URL is set")
			os.Exit(1)
		}
		logger.Info("Feeds: sheets | retries: %d | timeout: %v", cfg.MaxRetries, cfg.HTTPTimeout())
		source = services.NewSheetSource(
			sheets.NewClient(cfg.HTTPTimeout(), cfg.MaxRetries, logger),
			services.NewCleaner(logger),
			services.NewFeedBuilder(logger),
			cfg.StatesCSVURL, cfg.CandidatesCSVURL,
		)
	}

	var export storage.FeedWriter
	if cfg.ExportCSVPath != "" {
		w, err := storage.NewCSVWriter(cfg.ExportCSVPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			os.Exit(1)
		}
		export = w
		logger.Info("Candidate feed will be exported to %s", cfg.ExportCSVPath)
	}

	reasons, err := services.DefaultReasonCatalog()
	if err != nil {
		logger.Error("Failed to load reason catalog: %v", err)
		os.Exit(1)
	}

	feeds := services.NewFeedService(source, cfg.FeedTTL(), cfg.LoadTimeout(), export, logger)
	pages := services.NewPageBuilder(
		feeds,
		services.NewSelector(services.DefaultRandom),
		services.NewRenderer(reasons, cfg.SearchBaseURL),
		logger,
	)

	srv, err := server.New(pages, feeds, logger)
	if err != nil {
		logger.Error("Failed to parse templates: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the cache; a failure here is retried on the first request.
	if _, err := feeds.Feeds(ctx); err != nil {
		logger.Warn("Initial feed load failed: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown: %v", err)
		}
	}()

	logger.Info("Listening on %s", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Listen: %v", err)
		os.Exit(1)
	}
	logger.Info("Stopped")
}
