package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	S3Bucket       string
	AWSRegion      string
	S3Endpoint     string
	RabbitMQURL    string
	InternalAPIKey string

	// Download-link TTLs in minutes. Requested values are clamped to
	// [LinkMinMinutes, LinkMaxMinutes].
	LinkDefaultMinutes int
	LinkMinMinutes     int
	LinkMaxMinutes     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		InternalAPIKey:     getEnv("INTERNAL_API_KEY", ""),
		LinkDefaultMinutes: getEnvInt("LINK_DEFAULT_MINUTES", 60),
		LinkMinMinutes:     getEnvInt("LINK_MIN_MINUTES", 1),
		LinkMaxMinutes:     getEnvInt("LINK_MAX_MINUTES", 120),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
