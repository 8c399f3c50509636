package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/lot-reservation/docs"
	"github.com/tair/lot-reservation/internal/reservation"
	"github.com/tair/lot-reservation/internal/reservation/cache"
	httpDelivery "github.com/tair/lot-reservation/internal/reservation/delivery/http"
	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/repository"
	"github.com/tair/lot-reservation/kafka"
	"github.com/tair/lot-reservation/pkg/auth"
	"github.com/tair/lot-reservation/pkg/config"
	"github.com/tair/lot-reservation/pkg/database"
	"github.com/tair/lot-reservation/pkg/logger"
	"github.com/tair/lot-reservation/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{Service: "reservation-service"})
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(logger.Options{
		Service: cfg.Service.Name,
		Level:   cfg.Service.LogLevel,
		Pretty:  cfg.Service.IsDevelopment(),
	})

	logger.Logger.Info().
		Str("service", cfg.Service.Name).
		Str("environment", cfg.Service.Environment).
		Str("log_level", cfg.Service.LogLevel).
		Msg("Starting reservation service")

	// Initialize tracing
	tp, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}

	// Run migrations
	if err := repository.NewGormStore(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Availability cache
	var availabilityCache domain.AvailabilityCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		availabilityCache = cache.NewRedisCache(redisClient, cfg.Redis.TTL)
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Availability cache enabled")
	}

	// Event publisher
	var publisher domain.EventPublisher
	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		publisher = kafkaPublisher
	}

	// Initialize service with Wire DI
	svc, err := reservation.InitializeService(db, cfg.Reservation, publisher, availabilityCache, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Order rejection consumer
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer, err = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, []string{cfg.Kafka.OrderRejectedTopic})
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		consumer.RegisterHandler(kafka.EventTypeOrderRejected, kafka.ReleaseOnRejection(svc.ReleaseAll))
		consumer.Start(ctx)
	}

	go svc.Sweeper.Run(ctx)

	server := newHTTPServer(cfg, svc.Handler, sqlDB)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.Service.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka consumer close failed")
		}
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka publisher close failed")
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}
	sqlDB.Close()

	logger.Logger.Info().Msg("Reservation service stopped")
}

func newHTTPServer(cfg *config.Config, handler *httpDelivery.ReservationHandler, db httpDelivery.Pinger) *http.Server {
	router := mux.NewRouter()

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig(
		cfg.Service.AllowedOrigins,
		cfg.Service.RequestTimeout,
		httpDelivery.NewHTTPMetrics(prometheus.DefaultRegisterer),
	)
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	handler.RegisterRoutes(router, tokens)
	handler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
