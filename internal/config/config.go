// Package config reads service settings from the environment and an optional .env file.
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

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	RedisURL    string
	CacheTTL    time.Duration
	CORSOrigins string
	LogLevel    string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// Load reads .env when present and then the process environment. Values that
// are set but malformed are reported rather than replaced by defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        stringVar("STORE_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CORSOrigins: stringVar("CORS_ORIGINS", "*"),
		LogLevel:    strings.ToLower(stringVar("LOG_LEVEL", "info")),
	}

	var errs []error
	cfg.TokenTTL = durationVar("TOKEN_TTL", 72*time.Hour, &errs)
	cfg.CacheTTL = durationVar("CACHE_TTL", 5*time.Minute, &errs)
	cfg.DBMaxOpenConns = intVar("DB_MAX_OPEN_CONNS", 25, &errs)
	cfg.DBMaxIdleConns = intVar("DB_MAX_IDLE_CONNS", 5, &errs)
	cfg.DBConnMaxLifetime = durationVar("DB_CONN_MAX_LIFETIME", time.Hour, &errs)

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func stringVar(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationVar(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func intVar(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return n
}
