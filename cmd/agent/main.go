package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/cache"
	"github.com/sivaSai9177/alert-agent/internal/client"
	"github.com/sivaSai9177/alert-agent/internal/config"
	"github.com/sivaSai9177/alert-agent/internal/connectivity"
	"github.com/sivaSai9177/alert-agent/internal/handlers"
	"github.com/sivaSai9177/alert-agent/internal/middleware"
	"github.com/sivaSai9177/alert-agent/internal/migration"
	"github.com/sivaSai9177/alert-agent/internal/queue"
	"github.com/sivaSai9177/alert-agent/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config  *config.Config
	logger  zerolog.Logger
	api     *client.Client
	cache   *cache.Cache
	poller  *cache.Poller
	queue   *queue.Queue
	monitor *connectivity.Monitor
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Remote alerts API client.
	apiClient := client.New(cfg.API, logger)

	// Durable queue store.
	queueStore, cleanup, err := buildQueueStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize queue store")
	}
	defer cleanup()

	dispatcher := queue.NewAPIDispatcher(apiClient, logger)
	actionQueue := queue.New(queueStore, dispatcher, logger)

	// Alert cache and poller.
	alertCache := cache.New(apiClient, logger)
	poller := cache.NewPoller(alertCache, apiClient, cfg.HospitalID, cfg.Poll.Interval, logger)

	// Connectivity monitor drives queue drains.
	monitor := connectivity.NewMonitor(apiClient, cfg.Connectivity.ProbeInterval, logger)
	monitor.OnOnline(func(ctx context.Context) {
		if err := actionQueue.Drain(ctx); err != nil && !errors.Is(err, queue.ErrDrainInProgress) {
			logger.Warn().Err(err).Msg("drain after reconnect stopped early")
		}
	})

	app := &application{
		config:  cfg,
		logger:  logger,
		api:     apiClient,
		cache:   alertCache,
		poller:  poller,
		queue:   actionQueue,
		monitor: monitor,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := app.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("poller exited")
		}
	}()
	go func() {
		if err := app.monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("connectivity monitor exited")
		}
	}()
	go app.runDrainTicker(ctx)

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)
	recoveredHandler := h.RecoveryHandler()(corsHandler)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(recoveredHandler, cancel)

	logger.Info().Msg("Agent terminated.")
}

// buildQueueStore opens the configured durable backend for queued actions.
func buildQueueStore(cfg *config.Config, logger zerolog.Logger) (queue.Store, func(), error) {
	switch cfg.Queue.Store {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		return queue.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
	default:
		db, err := sql.Open("postgres", cfg.Queue.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := migration.Run(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info().Msg("Queue store migrations completed")
		return queue.NewPostgresStore(db), func() { db.Close() }, nil
	}
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	alertHandler := handlers.NewAlertHandler(
		app.cache, app.poller, app.api, app.queue, app.monitor, app.config.HospitalID, app.logger)
	timelineHandler := handlers.NewTimelineHandler(app.cache, app.api, app.logger)
	queueHandler := handlers.NewQueueHandler(app.queue, app.logger)
	healthHandler := handlers.NewHealthHandler(app.monitor, app.queue, app.logger)

	return routes.NewRouter(alertHandler, timelineHandler, queueHandler, healthHandler)
}

// runDrainTicker retries queued actions periodically while online, so a
// failed head-of-queue action is not stranded until the next connectivity
// transition.
func (app *application) runDrainTicker(ctx context.Context) {
	ticker := time.NewTicker(app.config.Queue.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !app.monitor.IsOnline() {
				continue
			}
			if err := app.queue.Drain(ctx); err != nil && !errors.Is(err, queue.ErrDrainInProgress) {
				app.logger.Warn().Err(err).Msg("periodic drain stopped early")
			}
		}
	}
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, cancel context.CancelFunc) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info().Msgf("Agent listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		app.logger.Error().Err(err).Msg("Server error occurred")
	}

	// Stop background loops before the server drains.
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		app.logger.Info().Msg("HTTP server shutdown complete.")
	}
}
