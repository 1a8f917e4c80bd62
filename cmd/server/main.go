package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"private-scribe-server/internal/config"
	"private-scribe-server/internal/database"
	"private-scribe-server/internal/formatting"
	"private-scribe-server/internal/handler"
	"private-scribe-server/internal/logging"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/repository"
	"private-scribe-server/internal/service"
	"private-scribe-server/internal/session"
	"private-scribe-server/internal/transcription"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("type", cfg.Database.Type).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	var sessions session.Store = session.NewStatelessStore()
	if cfg.Redis.Addr != "" {
		client, err := session.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		sessions = session.NewRedisStore(client)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Refresh sessions stored in Redis")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, refresh tokens cannot be revoked")
	}

	uow := repository.NewUnitOfWork(db)

	whisper := transcription.NewWhisperClient(cfg.Transcription)
	ffmpeg := transcription.NewFFmpegTranscoder(cfg.Transcription.FFmpegPath)
	ollama := formatting.NewOllamaClient(cfg.Formatting)

	services := handler.Services{
		Auth:          service.NewAuthService(uow, sessions, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration, logger),
		Users:         service.NewUserService(uow),
		Notes:         service.NewNoteService(uow),
		Templates:     service.NewTemplateService(uow),
		Participants:  service.NewParticipantService(uow),
		Transcription: service.NewTranscriptionService(whisper, ffmpeg, logger),
		Formatting:    service.NewFormattingService(uow, ollama, logger),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := handler.NewRouter(services, handler.RouterConfig{
		CORS:           cfg.CORS,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		HealthCheck:    func() error { return database.Ping(db) },
		Metrics:        middleware.NewMetrics("scribe", registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, logger)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// transcription and formatting calls are slow
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Server.Env).Str("db", cfg.Database.Type).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Server stopped gracefully")
}
