package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"loom-downtime-backend/config"
	"loom-downtime-backend/internal/api"
	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/db"
	"loom-downtime-backend/internal/logging"
	"loom-downtime-backend/internal/metrics"
	"loom-downtime-backend/internal/notification"
	"loom-downtime-backend/internal/publish"
	"loom-downtime-backend/internal/recorder"
	"loom-downtime-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Log.Level, "loomd")
	logger.Info().Str("path", configPath).Str("timezone", cfg.Plant.Timezone).Msg("configuration loaded")

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	hasher := auth.NewHasher(cfg.Auth.PasswordSalt)
	if err := db.Seed(gormDB, cfg.Auth.AdminName, hasher.Hash(cfg.Auth.AdminPassword), logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	m := metrics.New()

	var opts []recorder.Option
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger, m)
		pool.Start(ctx)
		opts = append(opts, recorder.WithNotifier(pool))
	} else {
		logger.Warn().Msg("VAPID keys not configured, stoppage push alerts disabled")
	}

	var publisher *publish.KafkaPublisher
	if cfg.Kafka.Enabled {
		publisher = publish.NewKafkaPublisher(publish.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger)
		opts = append(opts, recorder.WithPublisher(publisher))
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing events to kafka")
	}

	rec := recorder.New(appStore, cfg.Plant.Location, logger, m, opts...)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(api.Deps{
		Store:    appStore,
		Recorder: rec,
		Hasher:   hasher,
		Location: cfg.Plant.Location,
		Webpush:  webpushOptions,
		Metrics:  m,
		Log:      logger,
	})
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cfg.Server.CacheTTL(),
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server ListenAndServe")
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server Shutdown")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to flush kafka writer")
		}
	}

	logger.Info().Msg("server gracefully stopped")
}
