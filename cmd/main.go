package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seancondron/ReelLoop/internal/adapter"
	"github.com/seancondron/ReelLoop/internal/apify"
	"github.com/seancondron/ReelLoop/internal/cache"
	"github.com/seancondron/ReelLoop/internal/config"
	"github.com/seancondron/ReelLoop/internal/database"
	"github.com/seancondron/ReelLoop/internal/handler"
	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/mq"
	"github.com/seancondron/ReelLoop/internal/normalizer"
	"github.com/seancondron/ReelLoop/internal/preference"
	"github.com/seancondron/ReelLoop/internal/progress"
	"github.com/seancondron/ReelLoop/internal/repository"
	"github.com/seancondron/ReelLoop/internal/router"
	"github.com/seancondron/ReelLoop/internal/service"
	"github.com/seancondron/ReelLoop/internal/ws"
)

func main() {
	// 1. 加载 .env 与配置
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/dev.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化日志
	logger, err := newLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting ReelLoop",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("version", cfg.Server.Version),
	)

	ctx := context.Background()
	checks := make(map[string]handler.DependencyCheck)

	// 3. 存储
	repo, closeRepo := initRepository(ctx, cfg, checks, logger)
	defer closeRepo()

	// 4. Redis (缓存/偏好/进度), 不可用时降级
	var (
		redisClient *redis.Client
		metaCache   adapter.MetadataCache
		reporter    apify.ProgressReporter
		wsManager   *ws.Manager
		prefs       interface {
			service.PreferenceStore
			handler.SkipRestrictedStore
		}
	)
	prefs = preference.NewStaticStore(cfg.Preferences.SkipRestrictedDefault)

	if cfg.Redis.Addr != "" {
		redisClient = initRedis(&cfg.Redis)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Failed to connect to Redis, cache and progress will be disabled", zap.Error(err))
		} else {
			logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
			if cfg.Cache.Enabled {
				metaCache = cache.NewService(redisClient, cfg.Cache.GetCacheTTL(), logger)
			}
			prefs = preference.NewStore(redisClient, cfg.Preferences.SkipRestrictedDefault, logger)
			reporter = progress.NewPublisher(redisClient, logger)
			wsManager = ws.NewManager(redisClient, logger)
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	// 5. RabbitMQ (可选)
	var events service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := mq.NewPublisher(&cfg.RabbitMQ, logger)
		if err != nil {
			logger.Warn("Failed to connect to RabbitMQ, post events will be disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = publisher
			checks["rabbitmq"] = publisher.Ping
		}
	}

	// 6. 元数据适配器
	fetchers := buildFetchers(cfg, metaCache, reporter, logger)

	// 7. 帖子服务
	postService := service.NewPostService(service.PostServiceOptions{
		Fetchers:    fetchers,
		Normalizer:  normalizer.New(time.Now),
		Repository:  repo,
		Preferences: prefs,
		Events:      events,
		Logger:      logger,
	})

	// 8. HTTP 服务
	r := router.SetupRouter(&router.Dependencies{
		Config:       cfg,
		PostService:  postService,
		Preferences:  prefs,
		HealthChecks: checks,
		WSManager:    wsManager,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// newLogger 根据配置创建日志
func newLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// initRedis 初始化 Redis 连接
func initRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// initRepository 按配置选择存储驱动
func initRepository(ctx context.Context, cfg *config.Config, checks map[string]handler.DependencyCheck, logger *zap.Logger) (repository.PostRepository, func()) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, posts are lost on restart")
		return repository.NewMemoryPostRepository(), func() {}

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, &cfg.Database.Mongo)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		repo := repository.NewMongoPostRepository(client.Database(cfg.Database.Mongo.Database), cfg.Database.Mongo.Collection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure mongo indexes", zap.Error(err))
		}
		checks["database"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Info("Connected to MongoDB", zap.String("database", cfg.Database.Mongo.Database))
		return repo, func() { _ = client.Disconnect(context.Background()) }

	default:
		db, err := database.OpenPostgres(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		if err := database.RunMigrations(cfg.Database.MigrationsPath, cfg.Database.GetURL(), logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		checks["database"] = db.PingContext
		logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host))
		return repository.NewPostgresPostRepository(db), func() { db.Close() }
	}
}

// buildFetchers 创建各平台的元数据适配器
func buildFetchers(cfg *config.Config, metaCache adapter.MetadataCache, reporter apify.ProgressReporter, logger *zap.Logger) map[models.Platform]adapter.Fetcher {
	tiktokOEmbed := adapter.NewOEmbedClient(adapter.OEmbedConfig{
		Provider: "tiktok",
		Endpoint: cfg.Providers.TikTok.OEmbedURL,
		Timeout:  cfg.Providers.RequestTimeout,
	}, metaCache, logger)

	youtubeOEmbed := adapter.NewOEmbedClient(adapter.OEmbedConfig{
		Provider: "youtube",
		Endpoint: cfg.Providers.YouTube.OEmbedURL,
		Params:   map[string]string{"format": "json"},
		Timeout:  cfg.Providers.RequestTimeout,
	}, metaCache, logger)

	apifyClient := apify.NewClient(apify.ClientConfig{
		BaseURL: cfg.Apify.BaseURL,
		Token:   cfg.Apify.APIToken,
		ActorID: cfg.Apify.InstagramActorID,
		Timeout: cfg.Apify.RequestTimeout,
	}, logger)
	poller := apify.NewPoller(apifyClient, apify.PollerConfig{
		Interval:    cfg.Apify.PollInterval,
		MaxAttempts: cfg.Apify.MaxAttempts,
	}, reporter, logger)

	if cfg.Apify.APIToken == "" {
		logger.Warn("APIFY_API_TOKEN is not set, Instagram posts will fail credential validation")
	}

	return map[models.Platform]adapter.Fetcher{
		models.PlatformTikTok:    adapter.NewTikTokAdapter(tiktokOEmbed),
		models.PlatformYouTube:   adapter.NewYouTubeAdapter(youtubeOEmbed),
		models.PlatformInstagram: adapter.NewInstagramAdapter(apifyClient, poller, cfg.Apify.MaxConcurrentJobs, logger),
	}
}
