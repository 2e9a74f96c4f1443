package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dutchcoders/go-clamd"
	"github.com/redis/go-redis/v9"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/api"
	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/auth"
	"resumebuilder/internal/config"
	"resumebuilder/internal/database"
	"resumebuilder/internal/media"
	"resumebuilder/internal/resume"
	"resumebuilder/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.String("db", cfg.Database.Name),
	)

	authService, err := auth.LoadAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	images, err := newImageUploader(cfg, logger)
	if err != nil {
		log.Fatalf("init image uploader: %v", err)
	}

	var rateCounter middleware.RateCounter
	if cfg.RateLimit.AIRequestsPerHour > 0 {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		rateCounter = redisClient
	}

	gateway := ai.NewGateway(ai.NewClient(cfg.OpenAI), cfg.OpenAI.Model)
	resumes := resume.NewService(db, images, logger)

	router := api.NewRouter(cfg.API, logger)
	api.RegisterRoutes(router, api.Dependencies{
		DB:                db,
		Resumes:           resumes,
		AI:                gateway,
		Auth:              authService,
		RateCounter:       rateCounter,
		AIRequestsPerHour: cfg.RateLimit.AIRequestsPerHour,
		MaxImageBytes:     cfg.Image.MaxBytes,
		Logger:            logger,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening",
		slog.String("addr", address),
		slog.String("image_provider", cfg.Image.Provider),
		slog.String("model", cfg.OpenAI.Model),
	)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

// newImageUploader 按配置选择 ImageKit 或 MinIO，配置了 clamd 时在外层加病毒扫描。
func newImageUploader(cfg *config.Config, logger *slog.Logger) (media.Uploader, error) {
	var uploader media.Uploader
	switch cfg.Image.Provider {
	case config.ImageProviderMinIO:
		storageClient, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init storage client: %w", err)
		}
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))
		uploader = media.NewMinIOUploader(storageClient, cfg.Image.Folder, logger)
	default:
		uploader = media.NewImageKitUploader(cfg.Image)
	}

	if cfg.Clamd.Addr != "" {
		logger.Info("image scanning enabled", slog.String("clamd_addr", cfg.Clamd.Addr))
		uploader = media.NewScanningUploader(uploader, clamd.NewClamd(cfg.Clamd.Addr), cfg.Image.MaxBytes, logger)
	}
	return uploader, nil
}
