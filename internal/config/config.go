// Package config loads service configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need. Provider keys may be empty;
// a provider without a key is left out of the fallback chain.
type Config struct {
	Port      string
	GCSBucket string

	GeminiAPIKey   string
	GeminiModel    string
	DeepSeekAPIKey string
	DeepSeekModel  string
	MistralAPIKey  string
	MistralModel   string

	// DatabaseURL enables the Postgres credit store; empty means in-memory.
	DatabaseURL string

	// DefaultCredits seeds new in-memory accounts for local development.
	DefaultCredits int64

	QueueBuffer  int
	QueueWorkers int
}

// Load reads the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		GCSBucket: getEnv("GCS_BUCKET", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		MistralAPIKey:  getEnv("MISTRAL_API_KEY", ""),
		MistralModel:   getEnv("MISTRAL_MODEL", "mistral-small-latest"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		DefaultCredits: getEnvInt64("DEFAULT_CREDITS", 10),
		QueueBuffer:    getEnvInt("QUEUE_BUFFER", 100),
		QueueWorkers:   getEnvInt("QUEUE_WORKERS", 4),
	}

	if cfg.GeminiAPIKey == "" && cfg.DeepSeekAPIKey == "" && cfg.MistralAPIKey == "" {
		return nil, fmt.Errorf("config: no provider API key set (GEMINI_API_KEY, DEEPSEEK_API_KEY or MISTRAL_API_KEY)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
