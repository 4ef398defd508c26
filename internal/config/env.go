package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// loadDotEnv exports the variables in path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with PINGATE_* variables. Unset and empty variables
// leave the current value alone; malformed numbers and durations are errors.
func parseEnv(cfg *Config) error {
	cfg.StorageDriver = envOrDefault("PINGATE_STORAGE_DRIVER", cfg.StorageDriver)
	cfg.StorageDSN = envOrDefault("PINGATE_STORAGE_DSN", cfg.StorageDSN)
	cfg.PINHashAlgorithm = envOrDefault("PINGATE_PIN_HASH_ALGORITHM", cfg.PINHashAlgorithm)
	cfg.LogLevel = envOrDefault("PINGATE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("PINGATE_LOG_FORMAT", cfg.LogFormat)
	cfg.SentryDSN = envOrDefault("PINGATE_SENTRY_DSN", envOrDefault("SENTRY_DSN", cfg.SentryDSN))
	cfg.Environment = envOrDefault("PINGATE_ENV", cfg.Environment)

	var err error
	if cfg.MaxFailedAttempts, err = envInt("PINGATE_MAX_FAILED_ATTEMPTS", cfg.MaxFailedAttempts); err != nil {
		return err
	}
	if cfg.LockoutCheckInterval, err = envDuration("PINGATE_LOCKOUT_CHECK_INTERVAL", cfg.LockoutCheckInterval); err != nil {
		return err
	}
	if cfg.LockoutSchedule, err = envDurations("PINGATE_LOCKOUT_SCHEDULE", cfg.LockoutSchedule); err != nil {
		return err
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// envDurations parses a comma-separated list such as "30s,1m,5m".
func envDurations(name string, fallback []time.Duration) ([]time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	return parseDurationList(raw)
}

func parseDurationList(raw string) ([]time.Duration, error) {
	out := make([]time.Duration, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("lockout schedule: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}
