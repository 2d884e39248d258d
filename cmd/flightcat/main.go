package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/display"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/metar-flight-category/internal/adapter/kafka"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/noaa"
	"github.com/couchcryptid/metar-flight-category/internal/config"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
	"github.com/couchcryptid/metar-flight-category/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := noaa.NewClient(cfg.MetarBaseURL, cfg.MetarTimeout, metrics, logger)
	var fetcher domain.Fetcher = client
	if cfg.MetarCacheTTL > 0 {
		fetcher = noaa.NewCachedFetcher(client, len(cfg.Stations), cfg.MetarCacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("report cache enabled", "ttl", cfg.MetarCacheTTL)
	}

	var loaders pipeline.Loaders

	// Console board (feature-flagged via DISPLAY_ENABLED).
	if cfg.DisplayEnabled {
		var bp domain.BrightnessProvider = display.StaticBrightness(cfg.Brightness)
		if cfg.LuxSensorPath != "" {
			bp = display.LuxFileSensor{Path: cfg.LuxSensorPath}
		}
		board := display.NewBoard(os.Stderr)
		if err := board.SelfTest(cfg.Stations, cfg.Brightness); err != nil {
			logger.Warn("display self-test failed", "error", err)
		}
		loaders = append(loaders, display.NewLoader(board, bp, logger))
		logger.Info("display enabled", "stations", len(cfg.Stations))
	}

	// History store (enabled by HISTORY_DB_PATH).
	var store *history.Store
	var hist httpadapter.HistoryReader
	if cfg.HistoryDBPath != "" {
		store, err = history.NewStore(cfg.HistoryDBPath)
		if err != nil {
			logger.Error("failed to open history store", "error", err, "path", cfg.HistoryDBPath)
			os.Exit(1)
		}
		loaders = append(loaders, store)
		hist = store
		logger.Info("history store enabled", "path", cfg.HistoryDBPath)
	}

	// Kafka sink (feature-flagged via KAFKA_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	if len(loaders) == 0 {
		logger.Warn("no output enabled; categories are only served over HTTP")
	}

	p := pipeline.New(fetcher, pipeline.NewClassifier(logger), loaders, logger, metrics, pipeline.Options{
		Stations:    cfg.Stations,
		Interval:    cfg.PollInterval,
		Concurrency: cfg.FetchConcurrency,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, hist, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start polling pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("history store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
