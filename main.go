package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lumen-edu/quiz-session-service/internal/cache"
	"github.com/lumen-edu/quiz-session-service/internal/config"
	"github.com/lumen-edu/quiz-session-service/internal/events"
	"github.com/lumen-edu/quiz-session-service/internal/handlers"
	"github.com/lumen-edu/quiz-session-service/internal/repositories/casdoor"
	"github.com/lumen-edu/quiz-session-service/internal/services"
	"github.com/lumen-edu/quiz-session-service/internal/session"
	"github.com/lumen-edu/quiz-session-service/internal/upstream"
	"github.com/lumen-edu/quiz-session-service/internal/utils"
	"github.com/lumen-edu/quiz-session-service/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.Environment)
	slogLogger := logger.Slog()

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: invalid REDIS_URL, running without cache: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				log.Printf("Warning: Redis unreachable, running without cache: %v", err)
				redisClient = nil
			}
		}
	}
	caches := cache.NewCacheManager(redisClient)

	// Initialize upstream exam API client with cache decorators
	client := upstream.NewClient(cfg.UpstreamAPIURL, cfg.UpstreamAPIToken, slogLogger)
	catalog := upstream.NewCachedCatalog(client, caches, cfg.ExamCacheTTL)
	questions := upstream.NewCachedQuestions(client, caches, cfg.ExamCacheTTL)

	// Initialize event publisher
	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	} else {
		publisher = events.NewLogEventPublisher(slogLogger)
	}

	// Initialize validator
	v := validator.New()

	// Initialize services
	quizService := services.NewQuizService(catalog, questions, publisher, v, slogLogger, session.Config{
		Duration:     cfg.Quiz.Duration,
		TickInterval: cfg.Quiz.TickInterval,
	})

	// Initialize handlers
	userRepo := casdoor.NewUserCasdoor(cfg.Casdoor, redisClient)
	handlerManager := handlers.NewHandlerManager(quizService, logger, cfg.Casdoor, userRepo)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Flush the event publisher
	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
