package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/diarynotes/diary-go/internal/model"
)

const (
	DefaultAPIURL = "https://api-staging.restoreme.care/"
	devJWTSecret  = "dev-secret-change-in-production"
)

// Server configures cmd/devserver.
type Server struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	SeedEmail   string
	SeedCode    string
	SeedPIN     string
}

// Client configures cmd/diary.
type Client struct {
	APIURL      string
	SessionFile string
	HTTPTimeout time.Duration
	PageSize    int
	StrictParse bool
}

// LoadServer reads the backend configuration. It exits when production runs with the dev secret.
func LoadServer() Server {
	cfg := Server{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		JWTSecret:   getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry:   getDuration("JWT_EXPIRY", 24*time.Hour),
		SeedEmail:   getEnv("SEED_EMAIL", "demo@example.com"),
		SeedCode:    getEnv("SEED_CODE", ""),
		SeedPIN:     getEnv("SEED_PIN", ""),
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return cfg
}

// Validate rejects settings that must not reach production.
func (c Server) Validate() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	return nil
}

// LoadClient reads the CLI configuration.
func LoadClient() Client {
	return Client{
		APIURL:      getEnv("DIARY_API_URL", DefaultAPIURL),
		SessionFile: getEnv("DIARY_SESSION_FILE", defaultSessionFile()),
		HTTPTimeout: getDuration("DIARY_HTTP_TIMEOUT", 30*time.Second),
		PageSize:    getInt("DIARY_PAGE_SIZE", model.DefaultPageSize),
		StrictParse: getBool("DIARY_STRICT_PARSE", false),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "diary", "session.yaml")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid number, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}
