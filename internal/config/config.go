package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pingate/internal/auth"
	"github.com/dmitrijs2005/pingate/internal/cryptox"
	"github.com/dmitrijs2005/pingate/internal/storage"
)

// Config holds runtime settings for the pingate CLI.
type Config struct {
	StorageDriver string
	StorageDSN    string

	MaxFailedAttempts    int
	LockoutSchedule      []time.Duration
	LockoutCheckInterval time.Duration

	PINHashAlgorithm string

	LogLevel  string
	LogFormat string

	SentryDSN   string
	Environment string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = storage.DriverSQLite
	c.StorageDSN = "pingate.db"
	c.MaxFailedAttempts = auth.DefaultThreshold
	c.LockoutSchedule = auth.DefaultLockoutSchedule()
	c.LockoutCheckInterval = auth.DefaultMonitorInterval
	c.PINHashAlgorithm = cryptox.AlgorithmArgon2id
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.Environment = "development"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// config file and flags, in that order. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the gate cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case storage.DriverSQLite, storage.DriverPostgres, storage.DriverRedis, storage.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, c.StorageDriver))
	}
	if c.StorageDriver != storage.DriverMemory && strings.TrimSpace(c.StorageDSN) == "" {
		errs = append(errs, errors.New("storage dsn is required"))
	}
	if _, err := cryptox.NewHasher(c.PINHashAlgorithm); err != nil {
		errs = append(errs, err)
	}
	if _, err := auth.NewEscalatingPolicy(c.MaxFailedAttempts, c.LockoutSchedule); err != nil {
		errs = append(errs, err)
	}
	if c.LockoutCheckInterval <= 0 {
		errs = append(errs, errors.New("lockout check interval must be positive"))
	}

	return errors.Join(errs...)
}
