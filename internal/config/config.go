package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Env selects the log format: "dev" (colored text) or "prod" (JSON).
	Env      string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	Port string `validate:"required,numeric"`

	// Data sources: local paths or http(s) URLs.
	TemperatureSource string `validate:"required"`
	AnomalySource     string `validate:"required"`
	GeometrySource    string `validate:"required"`

	// Timeline bounds for the year slider and autoplay wrap.
	FirstYear int `validate:"gte=0"`
	LastYear  int `validate:"gtefield=FirstYear"`

	DefaultCountry string `validate:"len=3,alpha,uppercase"`

	TickInterval time.Duration `validate:"gt=0"`
	Autoplay     bool

	// HTTPTimeout bounds each request for URL sources.
	HTTPTimeout time.Duration `validate:"gt=0"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Env = strings.ToLower(getenvDefault("APP_ENV", "dev"))
	level, err := parseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.TemperatureSource = getenvDefault("TEMPERATURE_SOURCE", "data/TEMP2.csv")
	cfg.AnomalySource = getenvDefault("ANOMALY_SOURCE", "data/HadCRUT4.csv")
	cfg.GeometrySource = getenvDefault("GEOMETRY_SOURCE", "data/custom.geo-2.json")

	if cfg.FirstYear, err = getenvInt("FIRST_YEAR", 1920); err != nil {
		return nil, err
	}
	if cfg.LastYear, err = getenvInt("LAST_YEAR", 2020); err != nil {
		return nil, err
	}
	cfg.DefaultCountry = strings.ToUpper(getenvDefault("DEFAULT_COUNTRY", "ALB"))

	if cfg.TickInterval, err = getenvDuration("TICK_INTERVAL", 400*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Autoplay, err = getenvBool("AUTOPLAY", true); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
