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

	"partshop/pkg/logger"
	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/config"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/handler"
	"partshop/shop-service/internal/app/shop/infrastructure/messaging"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/service"
	"partshop/shop-service/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "shop-service"

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.LogLevel)
	if cfg.Logstash != "" {
		if err := logger.InitLogstash(cfg.Logstash, serviceName, cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Logstash).Msg("Logstash is unavailable, logging to stdout only")
		}
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWT.DevSecret {
		logger.Warn().Msg("JWT_SECRET is not set, tokens are signed with the development secret")
	}

	// Цены отдаются числом, как их ждет фронтенд
	decimal.MarshalJSONWithoutQuotes = true

	// === POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Msg("Successfully connected to PostgreSQL database")

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	if cfg.Seed.Enabled {
		seedCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := service.NewSeeder(userRepo, categoryRepo, productRepo).Seed(seedCtx)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed initial data")
		}
	}

	// === REDIS ===
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	cancel()
	logger.Info().Msg("Successfully connected to Redis")

	tokenRepo := repository.NewRedisTokenRepository(redisClient)
	categoryCache := repository.NewRedisCategoryCache(redisClient, cfg.Redis.CategoriesTTL)

	// === KAFKA ===
	producer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()
	logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")

	// === СЕРВИСЫ И ОБРАБОТЧИКИ ===
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessDuration)

	userService := service.NewUserService(userRepo, producer)
	authService := service.NewAuthService(userService, userRepo, tokenRepo, jwtManager)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, categoryCache, producer)
	cartService := service.NewCartService(cartRepo, producer)
	reviewService := service.NewReviewService(reviewRepo, producer)

	router := handler.SetupRoutes(&handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Cart:        handler.NewCartHandler(cartService),
		Reviews:     handler.NewReviewHandler(reviewService),
		Middleware:  handler.NewAuthMiddleware(authService),
		AuthLimiter: handler.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ожидаем сигнала завершения (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Даем серверу 30 секунд на завершение текущих запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info().Msg("Server stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL через GORM с повторными попытками
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.NewGormLogger(cfg.LogLevel),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)

				if err := db.Use(metrics.NewGormPlugin(serviceName)); err != nil {
					return nil, fmt.Errorf("failed to register metrics plugin: %w", err)
				}
				if err := metrics.RegisterDBStats(sqlDB, cfg.DBName); err != nil {
					return nil, fmt.Errorf("failed to register db stats collector: %w", err)
				}
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectRedis создает и настраивает Redis клиент
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}
