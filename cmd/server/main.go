package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/HansenHalim1/RePlate.id/internal/auth"
	"github.com/HansenHalim1/RePlate.id/internal/cache"
	"github.com/HansenHalim1/RePlate.id/internal/events"
	"github.com/HansenHalim1/RePlate.id/internal/gateway"
	h "github.com/HansenHalim1/RePlate.id/internal/http"
	"github.com/HansenHalim1/RePlate.id/internal/repository"
	"github.com/HansenHalim1/RePlate.id/internal/service"
)

type Config struct {
	HTTPPort string

	DBDriver      string
	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string
	MigrationsDir string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string

	MidtransBaseURL   string
	MidtransServerKey string
	MidtransClientKey string

	SessionTTL      time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// .env is a local-development convenience; deployed environments set
	// real variables.
	_ = godotenv.Load()

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnvInt("DB_PORT", 5432),
		DBUser:        getEnv("DB_USER", "replate"),
		DBPassword:    getEnv("DB_PASSWORD", "replate"),
		DBName:        getEnv("DB_NAME", "replate"),
		SQLitePath:    getEnv("SQLITE_PATH", "replate.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "internal/repository/migrations/postgres"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		MidtransBaseURL:   getEnv("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),

		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func openRepository(cfg *Config) (*repository.Repository, error) {
	if cfg.DBDriver == "sqlite" {
		return repository.NewSQLiteRepository(cfg.SQLitePath)
	}
	return repository.NewRepository(&repository.Credentials{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
}

func main() {
	cfg := loadConfig()

	if cfg.MidtransServerKey == "" {
		log.Fatal("MIDTRANS_SERVER_KEY is required")
	}

	repo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
	}

	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	sessions := auth.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	cartCache := cache.NewRedisCache(redisClient)
	snapClient := gateway.NewClient(cfg.MidtransBaseURL, cfg.MidtransServerKey, cfg.MidtransClientKey)

	cartService := service.NewCartService(repo, cartCache)
	checkoutService := service.NewCheckoutService(repo, snapClient)
	webhookService := service.NewWebhookService(repo, cfg.MidtransServerKey, publisher)
	ratingService := service.NewRatingService(repo)

	router := h.NewRouter(h.RouterConfig{
		Sessions:       sessions,
		Products:       repo,
		Cart:           cartService,
		Checkout:       checkoutService,
		Webhook:        webhookService,
		Ratings:        ratingService,
		Orders:         repo,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "replate-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
