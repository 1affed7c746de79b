package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/kanji/internal/billing"
	"github.com/mmynk/kanji/internal/config"
	"github.com/mmynk/kanji/internal/consensus"
	"github.com/mmynk/kanji/internal/lock"
	"github.com/mmynk/kanji/internal/metrics"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/server"
	"github.com/mmynk/kanji/internal/service"
	"github.com/mmynk/kanji/internal/storage/sqlstore"
	"github.com/mmynk/kanji/internal/venue"
	"github.com/mmynk/kanji/pkg/logging"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting kanji", "env", cfg.Env, "storage", cfg.Storage.Driver, "venue_provider", cfg.Venue.Provider)

	store, err := sqlstore.Open(cfg.Storage.Driver, cfg.Storage.Path, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.Storage.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		locker = lock.NewRedis(rdb, cfg.Redis.LockTTL, logger)
		logger.Info("Using redis event locks", "addr", cfg.Redis.Addr)
	}

	// deliverer does the actual sending; sink is what the engine calls.
	var deliverer notify.Sink = notify.NewLogSink(logger)
	if cfg.Notify.SlackWebhookURL != "" {
		deliverer = notify.NewSlackSink(cfg.Notify.SlackWebhookURL, &http.Client{Timeout: cfg.Notify.Timeout}, logger)
	}
	sink := deliverer

	var worker *asynq.Server
	if cfg.Notify.Queue {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		sink = notify.NewQueueSink(client, logger)

		if cfg.Notify.Worker {
			worker = asynq.NewServer(redisOpt, asynq.Config{
				Concurrency: 4,
				Queues:      map[string]int{notify.QueueName: 1},
				Logger:      newAsynqLogger(logger),
			})
			if err := worker.Start(notify.NewServeMux(deliverer, logger)); err != nil {
				return fmt.Errorf("failed to start notification worker: %w", err)
			}
			defer worker.Shutdown()
			logger.Info("Notification worker started")
		}
	}

	provider, closeProvider, err := newProvider(ctx, cfg.Venue, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	engine := consensus.New(store,
		consensus.WithLocker(locker),
		consensus.WithSink(sink),
		consensus.WithProvider(provider),
		consensus.WithLogger(logger),
		consensus.WithMetrics(m),
		consensus.WithSinkTimeout(cfg.Notify.Timeout),
		consensus.WithProviderTimeout(cfg.Venue.Timeout),
		consensus.WithAppURL(cfg.Notify.AppURL),
	)
	splitter := billing.New(store,
		billing.WithLocker(locker),
		billing.WithLogger(logger),
		billing.WithMetrics(m),
	)

	router := server.NewRouter(server.Deps{
		Events:   service.NewEventService(engine, logger),
		Bills:    service.NewBillService(splitter, logger),
		Logger:   logger,
		Gatherer: reg,
		Health:   store,
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.Venue.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// newProvider builds the configured venue provider and a release func.
func newProvider(ctx context.Context, cfg config.Venue, logger *slog.Logger) (venue.Provider, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case "hotpepper":
		return venue.NewHotpepper(cfg.HotpepperAPIKey, cfg.MaxResults, logger,
			venue.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		), noop, nil
	case "gemini":
		g, client, err := venue.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxResults, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return g, func() { client.Close() }, nil
	default:
		return venue.NewStatic(cfg.MaxResults), noop, nil
	}
}
