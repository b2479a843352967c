package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort      string
	StoreBackend string
	QdrantURL    string
	DataDir      string

	UsersCollection     string
	InventoryCollection string
	PartsCollection     string

	JWTSecret string
	TokenTTL  time.Duration

	AdminUsername string
	AdminPassword string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a
// Config struct. A .env file in the current directory or a parent is
// loaded first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env at the project root.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:      getEnv("API_PORT", "8000"),
		StoreBackend: getEnv("STORE_BACKEND", "qdrant"),
		QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		UsersCollection:     getEnv("USERS_COLLECTION", "users"),
		InventoryCollection: getEnv("INVENTORY_COLLECTION", "inventory"),
		PartsCollection:     getEnv("PARTS_COLLECTION", "partes"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttlStr := getEnv("TOKEN_TTL", "2h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL must be a valid duration: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be greater than 0")
	}
	cfg.TokenTTL = ttl

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// The sqlite backend stores its database under DATA_DIR.
	if cfg.StoreBackend == "sqlite" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", s)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
