package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/vocab-trainer/internal/assistant"
	"github.com/vocab-trainer/internal/assistant/groq"
	"github.com/vocab-trainer/internal/assistant/yandex"
	"github.com/vocab-trainer/internal/cache"
	"github.com/vocab-trainer/internal/config"
	"github.com/vocab-trainer/internal/handler"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.S().Fatalf("Failed to load config: %v", err)
	}

	logger, err := middleware.InitLogger(cfg.Log)
	if err != nil {
		zap.S().Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	db, err := repository.Open(cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Fatalw("Failed to initialize database", "driver", cfg.Database.Driver, "error", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Fatalw("Failed to migrate database", "error", err)
	}

	rdb, leaderboardCache := initRedis(cfg, logger)

	images, err := initImageStore(cfg)
	if err != nil {
		logger.Fatalw("Failed to initialize image storage", "backend", cfg.Upload.Backend, "error", err)
	}

	// Repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	cardRepo := repository.NewCardRepository(db)
	scoreRepo := repository.NewHighscoreRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Services
	catalogService := service.NewCatalogService(cardRepo, tx, images, logger)
	authService := service.NewAuthService(userRepo, catalogService, cfg.JWT, logger)
	gameService := service.NewGameService(cardRepo)
	leaderboardService := service.NewLeaderboardService(scoreRepo, leaderboardCache, logger)
	chatService := service.NewChatService(chatRepo, tx, initProviders(cfg, logger), cfg.Assistant, yandex.ModelKey, logger)

	router, err := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.JWT),
		Cards:       handler.NewCardHandler(catalogService, cfg.Upload.MaxSizeMB),
		Games:       handler.NewGameHandler(gameService),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService),
		Chat:        handler.NewChatHandler(chatService, cfg.Assistant.DefaultTemperature, cfg.CORS.AllowedOrigins),
	}, authService, cfg.JWT.CookieName)
	if err != nil {
		logger.Fatalw("Failed to build router", "error", err)
	}

	if local, ok := images.(*storage.LocalStore); ok {
		router.Static(handler.ImageURLPrefix+storage.Prefix, local.Dir())
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
			"database":   dbStatus,
			"models":     chatService.Models(),
		})
	})

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposedHeaders:   []string{middleware.HeaderRequestID},
			AllowCredentials: true,
		}).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("Starting server", "addr", srv.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		// Graceful shutdown with 10 second timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	waitErr := g.Wait()
	if waitErr != nil {
		logger.Errorw("Server stopped with error", "error", waitErr)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warnw("Error closing Redis connection", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server exited properly")
	if waitErr != nil {
		os.Exit(1)
	}
}

// initRedis connects the leaderboard cache. An unreachable redis disables
// caching instead of stopping the server.
func initRedis(cfg *config.Config, logger *zap.SugaredLogger) (*redis.Client, cache.Leaderboard) {
	if !cfg.Redis.Enabled {
		return nil, cache.Noop{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warnw("Redis unavailable, leaderboard cache disabled", "addr", cfg.Redis.Addr, "error", err)
		_ = rdb.Close()
		return nil, cache.Noop{}
	}

	return rdb, cache.NewRedisLeaderboard(rdb, cfg.Redis.LeaderboardTTL)
}

func initImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.Upload.Backend == "s3" {
		return storage.NewS3Store(cfg.S3)
	}
	return storage.NewLocalStore(cfg.Upload.Dir)
}

// initProviders registers every configured completion back-end under its model keys
func initProviders(cfg *config.Config, logger *zap.SugaredLogger) *assistant.Registry {
	ac := cfg.Assistant
	registry := assistant.NewRegistry()

	if ac.Yandex.CatalogID != "" && ac.Yandex.SecretKey != "" {
		registry.Register(yandex.ModelKey, yandex.NewClient(ac.Yandex, ac.SystemPrompt, ac.Timeout, logger), yandex.DefaultModel)
	} else {
		logger.Warn("YandexGPT credentials missing, model disabled")
	}

	if ac.Groq.APIKey != "" {
		client := groq.NewClient(ac.Groq, ac.SystemPrompt, ac.Timeout, logger)
		for key, model := range groq.Models {
			registry.Register(key, client, model)
		}
	} else {
		logger.Warn("Groq API key missing, models disabled")
	}

	return registry
}
