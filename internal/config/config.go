// Package config collects environment configuration for the server.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string

	// Document extraction service (async markdown extraction API).
	ExtractionBaseURL string
	ExtractionAPIKey  string

	// LLM completion service.
	GeminiAPIKey string
	GeminiModel  string

	JWTSecret   string
	JWTTTLHours int

	// Local development: in-memory store, no Postgres required.
	UseMemoryStore bool
}

// Load reads configuration from the environment, honoring a .env file if one
// is present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getenv("PORT", "8111"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ExtractionBaseURL: getenv("EXTRACTION_BASE_URL", "https://extraction-api.nanonets.com"),
		ExtractionAPIKey:  os.Getenv("EXTRACTION_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTTTLHours:       getenvInt("JWT_TTL_HOURS", 72),
		UseMemoryStore:    os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local",
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if !cfg.UseMemoryStore && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required unless USE_MEMORY_STORE=true")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
