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

	"neuroteach/internal/client"
	"neuroteach/internal/config"
	"neuroteach/internal/generator"
	"neuroteach/internal/handler"
	"neuroteach/internal/session"
	"neuroteach/internal/storage"
	"neuroteach/internal/store"
	"neuroteach/internal/web"
	sharedLogger "neuroteach/shared/logger"
	sharedMiddleware "neuroteach/shared/middleware"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Конфигурация ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Инициализация логгера ---
	encoding := cfg.LogEncoding
	if cfg.IsProduction() {
		encoding = "json"
	}
	logger, err := sharedLogger.New(sharedLogger.Config{Level: cfg.LogLevel, Encoding: encoding})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("authMode", cfg.AuthMode),
		zap.String("lessonsMode", cfg.LessonsMode),
		zap.String("generatorMode", cfg.GeneratorMode),
		zap.String("storage", cfg.StorageBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Хранилище ---
	var (
		shared         storage.Storage
		rateLimitStore rateli.Store
	)
	switch cfg.StorageBackend {
	case config.StorageRedis:
		redisClient, err := setupRedis(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		shared = storage.NewRedisStorage(redisClient, cfg.RedisTTL, logger)
		rateLimitStore = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        cfg.AuthRatePeriod,
			Limit:       cfg.AuthRateLimit,
		})
	default:
		shared = storage.NewMemoryStorage()
		rateLimitStore = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  cfg.AuthRatePeriod,
			Limit: cfg.AuthRateLimit,
		})
	}

	// --- Бэкенды ---
	authBackend, err := newAuthBackend(cfg, shared, logger)
	if err != nil {
		logger.Fatal("Failed to create auth backend", zap.Error(err))
	}

	var lessonClient client.LessonServiceClient
	if cfg.LessonsMode == config.ModeRemote || cfg.GeneratorMode == config.GeneratorRemote {
		lessonClient, err = client.NewLessonServiceClient(cfg.LessonServiceURL, cfg.RemoteTimeout, logger)
		if err != nil {
			logger.Fatal("Failed to create lesson service client", zap.Error(err))
		}
	}

	newGenerator, err := generatorFactory(cfg, lessonClient, logger)
	if err != nil {
		logger.Fatal("Failed to create lesson generator", zap.Error(err))
	}

	// --- Сессии ---
	registry := session.NewRegistry(func(id string) *session.Workspace {
		st := storage.WithPrefix(shared, "session:"+id+":")
		var source store.LessonSource
		if cfg.LessonsMode == config.ModeRemote {
			source = lessonClient
		}
		return &session.Workspace{
			Auth:    store.NewAuthStore(authBackend, st, logger),
			Lessons: store.NewLessonStore(source, newGenerator(st), st, cfg.LessonFetchTimeout, logger),
		}
	}, cfg.SessionIdleTTL, logger)
	go registry.Run(ctx, cfg.SessionSweepPeriod)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	// --- Настройка HTTP сервера (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:" + cfg.ServerPort}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": registry.Len()})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	secureCookies := cfg.SecureCookies || cfg.IsProduction()
	h := handler.NewHandler(registry, cfg.SessionSecret, secureCookies, logger)
	h.RegisterRoutes(router, handler.NewAuthRateLimiter(rateLimitStore, logger))

	p.Use(router)

	// --- Запуск HTTP сервера ---
	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// генерация плана может идти дольше стандартных 15 секунд
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Корректное завершение ---
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting")
}

func newAuthBackend(cfg *config.Config, shared storage.Storage, logger *zap.Logger) (store.AuthBackend, error) {
	if cfg.AuthMode == config.ModeRemote {
		return client.NewAuthServiceClient(cfg.AuthServiceURL, cfg.RemoteTimeout, logger)
	}
	return client.NewLocalAuthBackend(shared, cfg.SessionSecret, cfg.AuthTokenTTL, cfg.AuthLatency, logger), nil
}

// generatorFactory возвращает конструктор генератора для хранилища сессии.
// Удаленному генератору нужен токен сессии, остальные общие для всех сессий.
func generatorFactory(cfg *config.Config, lessonClient client.LessonServiceClient, logger *zap.Logger) (func(storage.Storage) store.Generator, error) {
	switch cfg.GeneratorMode {
	case config.GeneratorRemote:
		return func(st storage.Storage) store.Generator {
			return generator.NewRemoteGenerator(lessonClient, st)
		}, nil
	case config.GeneratorOpenAI, config.GeneratorOllama:
		aiClient, err := generator.NewAIClient(generator.AIConfig{
			Provider:    cfg.GeneratorMode,
			BaseURL:     cfg.AIBaseURL,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.AIModel,
			Timeout:     cfg.AITimeout,
			Temperature: cfg.AITemperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		gen := generator.NewAIGenerator(aiClient, logger)
		return func(storage.Storage) store.Generator { return gen }, nil
	default:
		gen := generator.NewMockGenerator(cfg.MockLatency)
		return func(storage.Storage) store.Generator { return gen }, nil
	}
}

// setupRedis подключается к Redis с повторными попытками.
func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	const (
		maxRetries = 10
		retryDelay = 3 * time.Second
	)
	zap.L().Info("Attempting to connect and ping Redis", zap.String("address", opts.Addr), zap.Int("max_retries", maxRetries))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()
		if err == nil {
			zap.L().Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}
		_ = client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}
