package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DefaultRebuildInterval = 60 * time.Second
	DefaultTolerance       = "0.01"
)

// Settings holds the operational knobs of the ledger subsystem.
//
// Env:
// - REBUILD_INTERVAL_SECONDS (default 60)
// - REBUILD_CONCURRENCY (default 1, sequential)
// - REBUILD_ENABLED (default true)
// - REBUILD_RUN_ON_START (default false)
// - RECONCILE_TOLERANCE (default 0.01)
// - LOG_TIMEZONE (default UTC, log timestamps only)
// - LOG_LEVEL (default info)
// - PORT (default 8080)
type Settings struct {
	RebuildInterval    time.Duration   `validate:"gt=0"`
	RebuildConcurrency int             `validate:"gte=1,lte=64"`
	RebuildEnabled     bool
	RebuildRunOnStart  bool
	Tolerance          decimal.Decimal `validate:"-"`
	LogTimezone        string          `validate:"required,timezone"`
	LogLevel           string          `validate:"oneof=trace debug info warn warning error fatal panic"`
	Port               string          `validate:"required,numeric"`
}

var validate = validator.New()

func init() {
	// Load env from .env
	godotenv.Load()
}

func LoadSettings() (*Settings, error) {
	s := &Settings{
		RebuildInterval:    time.Duration(intFromEnv("REBUILD_INTERVAL_SECONDS", int(DefaultRebuildInterval/time.Second))) * time.Second,
		RebuildConcurrency: intFromEnv("REBUILD_CONCURRENCY", 1),
		RebuildEnabled:     !strings.EqualFold(strings.TrimSpace(os.Getenv("REBUILD_ENABLED")), "false"),
		RebuildRunOnStart:  strings.EqualFold(strings.TrimSpace(os.Getenv("REBUILD_RUN_ON_START")), "true"),
		LogTimezone:        stringFromEnv("LOG_TIMEZONE", "UTC"),
		LogLevel:           strings.ToLower(stringFromEnv("LOG_LEVEL", "info")),
		Port:               stringFromEnv("PORT", "8080"),
	}
	tol, err := decimal.NewFromString(stringFromEnv("RECONCILE_TOLERANCE", DefaultTolerance))
	if err != nil {
		return nil, fmt.Errorf("RECONCILE_TOLERANCE: %w", err)
	}
	if tol.IsNegative() {
		return nil, fmt.Errorf("RECONCILE_TOLERANCE must not be negative")
	}
	s.Tolerance = tol

	if err := validate.Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
