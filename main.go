package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-ordering-api/config"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/handlers"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/ordernum"
	"restaurant-ordering-api/payments"
	"restaurant-ordering-api/pricing"
	"restaurant-ordering-api/routes"
	"restaurant-ordering-api/seed"
	"restaurant-ordering-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger("restaurant-api", logger.ParseLevel(cfg.LogLevel))
	if envErr != nil {
		log.Debug("startup", "", "no .env file, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		fatal(log, "config_invalid", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		fatal(log, "db_connect_failed", err)
	}
	log.Info("db_connected", "", "database ready", slog.String("driver", cfg.Database.Driver))

	if cfg.SeedData {
		if err := seed.Run(context.Background(), db, log); err != nil {
			fatal(log, "seed_failed", err)
		}
	}

	var revoker middleware.Revoker
	var numbers ordernum.Generator
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			fatal(log, "redis_connect_failed", err)
		}
		revoker = middleware.NewRedisRevoker(rdb)
		numbers = ordernum.NewRedisGenerator(rdb)
		log.Info("redis_connected", "", "token revocation and order sequence on redis")
	}

	publisher, err := newPublisher(cfg.Events, log)
	if err != nil {
		fatal(log, "events_init_failed", err)
	}
	defer publisher.Close()

	opts := services.Options{
		DB:            db,
		Log:           log,
		Events:        publisher,
		OrderNumbers:  numbers,
		Estimator:     pricing.NewEstimator(pricing.Point{Lat: cfg.Restaurant.Latitude, Lng: cfg.Restaurant.Longitude}),
		StrictOverlap: cfg.Restaurant.StrictOverlapCheck,
	}
	if cfg.Stripe.SecretKey != "" {
		gateway, err := payments.NewStripeGateway(cfg.Stripe.SecretKey, log)
		if err != nil {
			fatal(log, "stripe_init_failed", err)
		}
		opts.Gateway = gateway
	} else {
		log.Warn("stripe_disabled", "", "STRIPE_SECRET_KEY not set, only cash payments are accepted")
	}

	svc := services.New(opts)
	tokens := middleware.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoker)
	h := handlers.New(svc, tokens, log, db, cfg.Restaurant.TrackingPollInterval)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.Recovery(log),
		middleware.ErrorHandler(log),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log),
	)
	routes.SetupRoutes(r, h, tokens)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server_started", "", "listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server_failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("server_stopping", "", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_failed", "", "forced shutdown", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server_stopped", "", "bye")
}

func newPublisher(cfg config.EventsConfig, log *logger.Logger) (events.Publisher, error) {
	switch cfg.Backend {
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	case "rabbitmq":
		return events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
	default:
		return events.NewLogPublisher(log), nil
	}
}

func fatal(log *logger.Logger, action string, err error) {
	log.Error(action, "", "startup failed", err)
	os.Exit(1)
}
