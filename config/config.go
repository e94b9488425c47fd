package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fleetxp/game/attribution"
	"fleetxp/logger"

	"go.uber.org/zap"
)

const defaultXPConstantsFile = "config/xp_constants.yaml"

var (
	AppPort          string
	HTTPPort         string
	MaxConnections   int
	AutosaveInterval time.Duration
	LogLevel         string

	XPConstantsFile string
	XP              attribution.Settings

	KafkaBrokers []string
	KafkaTopic   string

	// SeedDemoData fills an empty ledger with a few sample ships.
	SeedDemoData bool
)

// Init reads the environment and the XP constants file. Any invalid value
// is fatal: the engine must never run on half loaded constants.
func Init() {
	if err := load(); err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}
}

func load() error {
	var err error

	AppPort = envString("APP_PORT", "8080")
	HTTPPort = envString("HTTP_PORT", "8081")
	LogLevel = envString("LOG_LEVEL", "info")

	MaxConnections, err = envInt("MAX_CONNECTIONS", 100)
	if err != nil {
		return err
	}
	if MaxConnections <= 0 {
		return fmt.Errorf("MAX_CONNECTIONS must be positive, got %d", MaxConnections)
	}

	AutosaveInterval, err = envDuration("AUTOSAVE_INTERVAL", 5*time.Minute)
	if err != nil {
		return err
	}

	XPConstantsFile = envString("XP_CONSTANTS_FILE", defaultXPConstantsFile)
	XP, err = LoadXPConstants(XPConstantsFile)
	if err != nil {
		return err
	}

	KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	KafkaTopic = envString("KAFKA_TOPIC", "fleetxp.awards")

	if raw := strings.TrimSpace(os.Getenv("DB_SEED")); raw != "" {
		SeedDemoData, err = strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid DB_SEED value: %w", err)
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// envDuration accepts a Go duration ("90s") or a plain number of seconds.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		raw = strconv.Itoa(secs) + "s"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
