package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/explore-grabby/booking-backend/internal/logger"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string

	// DBDSN selects PostgreSQL; empty runs on in-memory repositories.
	DBDSN string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	AdminRole         string

	MaxExtensionDays int
	SoonOverdueDays  int

	StorageDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL string

	// ReminderSchedule is a cron spec with seconds; empty disables reminders.
	ReminderSchedule string

	LogLevel  string
	LogFormat string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	var err error

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DBDSN = getEnv("DB_DSN", "")

	// JWT secret is required to verify identity provider tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	cfg.AdminRole = getEnv("ADMIN_ROLE", "admin")

	if cfg.MaxExtensionDays, err = getEnvAsInt("MAX_EXTENSION_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.MaxExtensionDays < 1 {
		return nil, fmt.Errorf("MAX_EXTENSION_DAYS must be at least 1")
	}
	if cfg.SoonOverdueDays, err = getEnvAsInt("SOON_OVERDUE_DAYS", 2); err != nil {
		return nil, err
	}
	if cfg.SoonOverdueDays < 0 {
		return nil, fmt.Errorf("SOON_OVERDUE_DAYS must not be negative")
	}

	cfg.StorageDir = getEnv("STORAGE_DIR", "./data")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", "")
	cfg.ReminderSchedule = getEnv("REMINDER_SCHEDULE", "0 0 7 * * *")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}
