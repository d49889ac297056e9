package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholar-hub-api/internal/config"
	"github.com/noah-isme/scholar-hub-api/internal/database"
	"github.com/noah-isme/scholar-hub-api/internal/handler"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
	"github.com/noah-isme/scholar-hub-api/internal/router"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/pkg/ai"
	cloud "github.com/noah-isme/scholar-hub-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.AppEnv == "development")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.CourseRecord{}, &models.RoadmapStage{}, &models.Resume{}, &models.ChatMessage{}, &models.UploadRecord{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, caching and programme level preferences disabled")
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := connectNATS(cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
		publisher = natsConn
	}

	var assistant ai.Assistant
	if cfg.OpenRouterAPIKey != "" {
		openRouter, err := ai.NewOpenRouterAssistant(ai.OpenRouterConfig{
			APIKey:       cfg.OpenRouterAPIKey,
			BaseURL:      cfg.OpenRouterBaseURL,
			Model:        cfg.OpenRouterModel,
			SystemPrompt: cfg.ChatSystemPrompt,
			SiteURL:      cfg.OpenRouterSiteURL,
			AppTitle:     cfg.OpenRouterAppTitle,
			MaxTokens:    cfg.ChatMaxTokens,
			Temperature:  cfg.ChatTemperature,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create openrouter assistant")
		}
		assistant = openRouter
	} else {
		logger.Warn().Msg("openrouter api key not set, chat will answer with the fallback message")
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRecordRepo := repository.NewCourseRecordRepository(db)
	roadmapRepo := repository.NewRoadmapStageRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	chatRepo := repository.NewChatRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	gradeService := service.NewGradeService(logger)
	trackerService := service.NewTrackerService(courseRecordRepo, redisClient, cfg.TrackerCacheTTL, logger)
	roadmapService := service.NewRoadmapService(roadmapRepo, redisClient, cfg.RoadmapCacheTTL, logger)
	seedService := service.NewSeedService(roadmapRepo, redisClient, cfg.SeedEnabled, cfg.SeedToken, logger)
	chatService := service.NewChatService(assistant, chatRepo, publisher, validate, service.ChatOptions{
		FallbackMessage: cfg.ChatFallbackMessage,
		HistoryLimit:    cfg.ChatHistoryLimit,
	}, logger)
	resumeService, err := service.NewResumeService(resumeRepo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create resume service")
	}

	deps := router.Dependencies{
		CatalogHandler:   handler.NewCatalogHandler(gradeService, logger),
		CGPAHandler:      handler.NewCGPAHandler(gradeService, validate, logger),
		PredictorHandler: handler.NewPredictorHandler(gradeService, validate, logger),
		RoadmapHandler:   handler.NewRoadmapHandler(roadmapService, logger),
		ChatHandler:      handler.NewChatHandler(chatService, validate, middleware.RateLimit("chat", cfg.ChatRateLimit, cfg.ChatRateWindow), logger),
		TrackerHandler:   handler.NewTrackerHandler(trackerService, validate, logger),
		ResumeHandler:    handler.NewResumeHandler(resumeService, validate, logger),
		SeedHandler:      handler.NewSeedHandler(seedService, logger),
		HealthProbes:     healthProbes(db, redisClient),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		OptionalJWT:      middleware.JWTOptional(cfg.JWTSecret),
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary not configured, uploads disabled")
	} else {
		uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, logger)
		deps.UploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.AllowOrigins})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func connectNATS(cfg config.Config, logger zerolog.Logger) (*nats.Conn, error) {
	natsLogger := logger.With().Str("component", "nats").Logger()
	return nats.Connect(cfg.NATSURL,
		nats.Name(cfg.AppName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			natsLogger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			natsLogger.Info().Str("url", conn.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
