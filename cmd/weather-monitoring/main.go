package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-monitoring/internal/api/http"
	"github.com/i474232898/weather-monitoring/internal/config"
	"github.com/i474232898/weather-monitoring/internal/live"
	"github.com/i474232898/weather-monitoring/internal/logging"
	"github.com/i474232898/weather-monitoring/internal/notify"
	"github.com/i474232898/weather-monitoring/internal/scheduler"
	"github.com/i474232898/weather-monitoring/internal/store"
	"github.com/i474232898/weather-monitoring/internal/weather"
	"github.com/i474232898/weather-monitoring/internal/weather/providers"
)

type stores interface {
	weather.ObservationStore
	weather.AlertStore
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New("weather-monitoring", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalw("service failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.SugaredLogger) error {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source, err := providers.New(cfg.Provider, httpClient, providers.Keys{
		OpenWeather: cfg.OpenWeatherAPIKey,
		WeatherAPI:  cfg.WeatherAPIKey,
	})
	if err != nil {
		return err
	}

	var st stores
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		st = pg
		logger.Info("using postgres store")
	} else {
		// In-memory store with configured retention.
		st = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
		logger.Infow("using in-memory store", "maxHistory", cfg.StoreMaxHistory, "maxAge", cfg.StoreMaxAge)
	}

	var notifier weather.Notifier = notify.NewLogNotifier(logger.Named("notify"))
	if cfg.SMTP.Enabled() {
		notifier = notify.NewSMTPNotifier(cfg.SMTP)
	} else {
		logger.Warn("SMTP is not configured; alert notifications will only be logged")
	}

	hub := live.NewHub(32, logger.Named("live"))
	publishers := live.Multi{hub}
	if cfg.RedisURL != "" {
		rp, err := live.NewRedisPublisher(cfg.RedisURL, cfg.RedisChannel, logger.Named("live"))
		if err != nil {
			return err
		}
		defer rp.Close()
		publishers = append(publishers, rp)
	}

	evaluator := weather.NewEvaluator(st, notifier, cfg.NotifyTimeout, logger.Named("alerts"))
	collector := weather.NewCollector(weather.CollectorConfig{
		Locations:    cfg.Locations,
		Source:       source,
		Store:        st,
		Evaluator:    evaluator,
		Publisher:    publishers,
		FetchTimeout: cfg.FetchTimeout,
		Log:          logger.Named("collector"),
	})
	service := weather.NewService(cfg.Locations, st, st, logger.Named("service"))

	// Scheduler that periodically fetches and stores data. Shutdown stops
	// scheduling but lets an in-flight cycle finish within its own timeouts.
	sched := scheduler.New(cfg.FetchInterval, collector, logger.Named("scheduler"))
	if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, hub, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "port", cfg.Port, "provider", source.Name(), "locations", len(cfg.Locations))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
	return nil
}
