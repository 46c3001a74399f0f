package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port     string
	Env      string
	Timezone *time.Location

	DB         DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Checkout   CheckoutConfig
	Cloudinary CloudinaryConfig
	CORS       CORSConfig
	Worker     WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig contains admin session settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// Optional operator created at startup when missing.
	BootstrapEmail    string
	BootstrapPassword string
	BootstrapName     string
}

// CheckoutConfig contains storefront checkout settings.
type CheckoutConfig struct {
	DraftTTL time.Duration
}

// CloudinaryConfig contains the product image upload target.
type CloudinaryConfig struct {
	URL    string
	Folder string
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// WorkerConfig contains timing for background workers.
type WorkerConfig struct {
	ChangeRelayRetry time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	loc, err := time.LoadLocation(getEnv("TZ_DISPLAY", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_DISPLAY: %w", err)
	}
	cfg.Timezone = loc

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Admin auth
	cfg.Auth = AuthConfig{
		JWTSecret:         getEnv("JWT_SECRET", ""),
		BootstrapEmail:    getEnv("ADMIN_BOOTSTRAP_EMAIL", ""),
		BootstrapPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
		BootstrapName:     getEnv("ADMIN_BOOTSTRAP_NAME", "Admin"),
	}
	if cfg.Auth.TokenTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	// Checkout
	if cfg.Checkout.DraftTTL, err = parseDurationEnv("CHECKOUT_DRAFT_TTL", "2h"); err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_DRAFT_TTL: %w", err)
	}

	// Cloudinary (optional; uploads are disabled without it)
	cfg.Cloudinary = CloudinaryConfig{
		URL:    getEnv("CLOUDINARY_URL", ""),
		Folder: getEnv("CLOUDINARY_FOLDER", "products"),
	}

	// CORS
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	// Workers
	if cfg.Worker.ChangeRelayRetry, err = parseDurationEnv("CHANGE_RELAY_RETRY", "2s"); err != nil {
		return nil, fmt.Errorf("invalid CHANGE_RELAY_RETRY: %w", err)
	}

	// Basic validation for DB parameters.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}
	if cfg.Auth.TokenTTL == 0 {
		return nil, errors.New("JWT_TTL must be greater than zero")
	}
	if (cfg.Auth.BootstrapEmail == "") != (cfg.Auth.BootstrapPassword == "") {
		return nil, errors.New("ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set together")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
