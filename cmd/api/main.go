package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridepulse/internal/api"
	"ridepulse/internal/cache"
	"ridepulse/internal/config"
	"ridepulse/internal/events"
	"ridepulse/internal/logging"
	"ridepulse/internal/metrics"
	"ridepulse/internal/pipeline"
	"ridepulse/internal/service"
	"ridepulse/internal/session"
	"ridepulse/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	statuses, err := loadStatuses(cfg, &logger)
	if err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	p := pipeline.New(pipeline.NewStatusSets(
		statuses.Completed,
		statuses.CustomerCancelled,
		statuses.DriverCancelled,
		statuses.NoDriver,
	))

	store := session.NewStore(
		time.Duration(cfg.Pipeline.SessionTTLSeconds)*time.Second,
		cfg.Pipeline.MaxSessions,
	)

	eventBus := events.NewEventBus()
	subscribeEventLogging(eventBus, &logger)

	var aggregateCache *cache.RedisAggregateCache
	if redisClient != nil {
		aggregateCache = cache.NewRedisAggregateCache(
			redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	}

	svcLogger := logging.Component(&logger, "service")
	var svc *service.DatasetService
	if aggregateCache != nil {
		svc = service.NewDatasetService(store, aggregateCache, eventBus, p,
			cfg.Pipeline.TopN, cfg.Pipeline.HistogramBins, &svcLogger)
	} else {
		svc = service.NewDatasetService(store, nil, eventBus, p,
			cfg.Pipeline.TopN, cfg.Pipeline.HistogramBins, &svcLogger)
	}

	workerLogger := logging.Component(&logger, "export-worker")
	exportWorker := worker.NewExportWorker(store, eventBus, cfg.Exports.Path,
		worker.RetryPolicy{}, 32, &workerLogger)

	apiLogger := logging.Component(&logger, "api")
	httpServer := api.NewHTTPServer(cfg.API, svc, exportWorker,
		cfg.Pipeline.MaxUploadBytes, &apiLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	go exportWorker.Start(ctx)

	return serveHTTP(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadStatuses(cfg *config.Config, logger *zerolog.Logger) (*config.StatusLabels, error) {
	path := os.Getenv("STATUSES_PATH")
	if path == "" {
		path = cfg.Pipeline.StatusesPath
	}

	statuses, err := config.LoadStatuses(path)
	if err != nil {
		logger.Error().Err(err).Str("statuses_path", path).Msg("load statuses")
		return nil, err
	}
	return statuses, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without cache")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// subscribeEventLogging mirrors dataset lifecycle events into the log.
func subscribeEventLogging(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(event *events.Event) error {
		logger.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Msg("dataset event")
		return nil
	}
	bus.Subscribe(events.EventDatasetLoaded, handler)
	bus.Subscribe(events.EventDatasetReplaced, handler)
	bus.Subscribe(events.EventExportCreated, handler)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
