package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"persona-shop/internal/config"
	"persona-shop/internal/db"
	apihttp "persona-shop/internal/http"
	"persona-shop/internal/llm"
	"persona-shop/internal/repository"
	"persona-shop/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	profileRepo := repository.NewPgProfileRepository(pool)
	behaviorRepo := repository.NewPgBehaviorRepository(pool)
	productRepo := repository.NewPgProductRepository(pool)
	analyticsRepo := repository.NewPgAnalyticsRepository(pool)

	llmTimeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	var llmClient llm.Client
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, llmTimeout, zap.NewStdLog(logger))
	} else {
		logger.Warn("llm api key not configured, search analysis will use local heuristics")
	}

	sessionStore := service.NewMemorySessionMetricsStore(30 * time.Minute)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory session buffer", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionMetricsStore(redisClient, 30*time.Minute)
		}
		cancel()
	}

	analyzer := service.NewTextAnalyzer(llmClient, llmTimeout, logger)
	profileSvc := service.NewProfileService(profileRepo, behaviorRepo, sessionStore, analyzer, logger)
	recommendationSvc := service.NewRecommendationService(productRepo, profileSvc, logger)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, logger)
	adminTokens := service.NewAdminTokenService(cfg.AdminSecret, time.Hour)
	if cfg.AdminSecret == "" {
		logger.Warn("admin jwt secret not configured")
	}

	personalityHandler := apihttp.NewPersonalityHandler(logger, profileSvc)
	productHandler := apihttp.NewProductHandler(logger, productRepo, recommendationSvc)
	analyticsHandler := apihttp.NewAnalyticsHandler(logger, analyticsSvc)
	router := apihttp.NewRouter(logger, personalityHandler, productHandler, analyticsHandler, adminTokens)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
