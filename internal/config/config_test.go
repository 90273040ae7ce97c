package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("UPSTREAM_API_URL", "http://exam-api:3000")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("port = %s", cfg.Port)
		}
		if cfg.Environment != "development" {
			t.Errorf("environment = %s", cfg.Environment)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("log level = %v", cfg.LogLevel)
		}
		if cfg.Quiz.Duration != time.Hour {
			t.Errorf("quiz duration = %v", cfg.Quiz.Duration)
		}
		if cfg.Quiz.TickInterval != time.Second {
			t.Errorf("tick interval = %v", cfg.Quiz.TickInterval)
		}
		if cfg.KafkaTopic != "quiz.events" {
			t.Errorf("kafka topic = %s", cfg.KafkaTopic)
		}
	})

	t.Run("missing upstream url fails", func(t *testing.T) {
		t.Setenv("UPSTREAM_API_URL", "")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing UPSTREAM_API_URL")
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Setenv("UPSTREAM_API_URL", "http://exam-api:3000")
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("QUIZ_DURATION_SECONDS", "1800")
		t.Setenv("QUIZ_TICK_INTERVAL_MS", "500")
		t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("port = %s", cfg.Port)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Errorf("log level = %v", cfg.LogLevel)
		}
		if cfg.Quiz.Duration != 30*time.Minute {
			t.Errorf("quiz duration = %v", cfg.Quiz.Duration)
		}
		if cfg.Quiz.TickInterval != 500*time.Millisecond {
			t.Errorf("tick interval = %v", cfg.Quiz.TickInterval)
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
			t.Errorf("brokers = %v", cfg.KafkaBrokers)
		}
	})
}
