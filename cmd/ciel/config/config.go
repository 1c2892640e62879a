// Package config loads ciel's process-wide configuration from the
// environment (and an optional .env file), the way the rest of this
// module's ambient stack expects: one flat Config struct, read once at
// startup, never re-read mid-process.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything cmd/ciel needs that isn't a CLI flag: logging
// sinks and levels, and whether/where to export OpenTelemetry data.
type Config struct {
	LogLevel    string
	LogFile     string
	LogMaxSize  int
	LogMaxFiles int
	LogMaxAge   int

	OtelEnabled     bool
	OtelEndpoint    string
	OtelServiceName string
	OtelInsecure    bool
	Version         string
}

// Load reads configuration from the environment, loading .env first if
// present (silently ignored if absent — an operator running ciel from a
// shell with real env vars set shouldn't need one).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LogLevel:    getEnv("CIEL_LOG_LEVEL", "info"),
		LogFile:     getEnv("CIEL_LOG_FILE", ""),
		LogMaxSize:  getEnvInt("CIEL_LOG_MAX_SIZE_MB", 50),
		LogMaxFiles: getEnvInt("CIEL_LOG_MAX_FILES", 5),
		LogMaxAge:   getEnvInt("CIEL_LOG_MAX_AGE_DAYS", 28),

		OtelEnabled:     getEnvBool("CIEL_OTEL_ENABLED", false),
		OtelEndpoint:    getEnv("CIEL_OTEL_ENDPOINT", "127.0.0.1:4317"),
		OtelServiceName: getEnv("CIEL_OTEL_SERVICE_NAME", "ciel"),
		OtelInsecure:    getEnvBool("CIEL_OTEL_INSECURE", true),
		Version:         getEnv("CIEL_VERSION", "dev"),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
