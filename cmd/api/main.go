package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careband/postop-triage/internal/adapters/cache"
	"github.com/careband/postop-triage/internal/adapters/database"
	"github.com/careband/postop-triage/internal/api/handlers"
	"github.com/careband/postop-triage/internal/api/routes"
	"github.com/careband/postop-triage/internal/application/services"
	"github.com/careband/postop-triage/internal/domain/repositories"
	"github.com/careband/postop-triage/internal/infrastructure/clients/postgres"
	"github.com/careband/postop-triage/internal/infrastructure/clients/redis"
	"github.com/careband/postop-triage/internal/infrastructure/notifications"
	"github.com/careband/postop-triage/internal/infrastructure/observability"
	"github.com/careband/postop-triage/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Auth.WebhookToken == "" {
		// The endpoint fails closed per request, but say so loudly at boot.
		log.Warn().Msg("WEBHOOK_AUTH_TOKEN is not set, all report requests will be rejected")
	}

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Optional persistence collaborator
	var records repositories.TriageRecordRepository
	if cfg.Database.Enabled() {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize PostgreSQL client, persistence disabled")
		} else {
			defer pgClient.Close()
			records = database.NewTriageRecordAdapter(pgClient.DB())
			log.Info().Msg("PostgreSQL client initialized")
		}
	}

	// Optional alert throttle
	var throttle services.AlertThrottle
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Redis client, alert throttle disabled")
		} else {
			defer redisClient.Close()
			throttle = cache.NewAlertThrottle(redisClient.Client(), time.Duration(cfg.Alerts.CooldownSeconds)*time.Second)
			log.Info().Msg("Redis alert throttle initialized")
		}
	}

	// Alert channels: absence of configuration disables a channel only.
	var messaging services.MessageSender
	if cfg.Telegram.Enabled() {
		sender, err := notifications.NewTelegramSender(&cfg.Telegram)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Telegram sender")
		} else {
			messaging = sender
			log.Info().Msg("Telegram alert channel enabled")
		}
	} else {
		log.Info().Msg("Telegram alert channel not configured, skipping")
	}

	var email services.EmailSender
	if cfg.Email.Enabled() {
		sender, err := notifications.NewSendGridSender(&cfg.Email)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize SendGrid sender")
		} else {
			email = sender
			log.Info().Msg("email alert channel enabled")
		}
	} else {
		log.Info().Msg("email alert channel not configured, skipping")
	}

	dispatcher := services.NewAlertDispatcher(messaging, email, throttle, time.Duration(cfg.Alerts.SendTimeoutSecs)*time.Second)
	triageService := services.NewTriageService(dispatcher, records)
	reportHandler := handlers.NewSymptomReportHandler(triageService, cfg.Auth.WebhookToken, metrics)

	router := routes.NewRouter(reportHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
