package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity provider settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// QuizConfig holds the session timing knobs.
type QuizConfig struct {
	Duration     time.Duration
	TickInterval time.Duration
}

// Config is the full service configuration loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	UpstreamAPIURL   string
	UpstreamAPIToken string

	RedisURL     string
	ExamCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Casdoor CasdoorConfig
	Quiz    QuizConfig
}

// LoadConfig reads configuration from the environment, loading .env first
// when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		UpstreamAPIURL:   os.Getenv("UPSTREAM_API_URL"),
		UpstreamAPIToken: os.Getenv("UPSTREAM_API_TOKEN"),

		RedisURL:     os.Getenv("REDIS_URL"),
		ExamCacheTTL: time.Duration(getEnvInt("EXAM_CACHE_TTL_SECONDS", 300)) * time.Second,

		KafkaTopic: getEnv("KAFKA_TOPIC", "quiz.events"),

		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},

		Quiz: QuizConfig{
			Duration:     time.Duration(getEnvInt("QUIZ_DURATION_SECONDS", 3600)) * time.Second,
			TickInterval: time.Duration(getEnvInt("QUIZ_TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.UpstreamAPIURL == "" {
		return nil, fmt.Errorf("UPSTREAM_API_URL is required")
	}
	if cfg.Quiz.Duration <= 0 {
		return nil, fmt.Errorf("QUIZ_DURATION_SECONDS must be positive")
	}
	if cfg.Quiz.TickInterval <= 0 {
		return nil, fmt.Errorf("QUIZ_TICK_INTERVAL_MS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
