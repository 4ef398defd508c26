package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/pingate/internal/flagx"
	"github.com/dmitrijs2005/pingate/internal/timex"
)

// FileConfig is the on-disk schema. Pointer and slice fields distinguish
// "absent" from zero so a partial file only overrides what it names.
type FileConfig struct {
	StorageDriver        string           `json:"storage_driver" yaml:"storage_driver"`
	StorageDSN           string           `json:"storage_dsn" yaml:"storage_dsn"`
	MaxFailedAttempts    *int             `json:"max_failed_attempts" yaml:"max_failed_attempts"`
	LockoutSchedule      []timex.Duration `json:"lockout_schedule" yaml:"lockout_schedule"`
	LockoutCheckInterval *timex.Duration  `json:"lockout_check_interval" yaml:"lockout_check_interval"`
	PINHashAlgorithm     string           `json:"pin_hash_algorithm" yaml:"pin_hash_algorithm"`
	LogLevel             string           `json:"log_level" yaml:"log_level"`
	LogFormat            string           `json:"log_format" yaml:"log_format"`
	SentryDSN            string           `json:"sentry_dsn" yaml:"sentry_dsn"`
	Environment          string           `json:"environment" yaml:"environment"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.StorageDriver, fc.StorageDriver)
	setString(&cfg.StorageDSN, fc.StorageDSN)
	setString(&cfg.PINHashAlgorithm, fc.PINHashAlgorithm)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.SentryDSN, fc.SentryDSN)
	setString(&cfg.Environment, fc.Environment)

	if fc.MaxFailedAttempts != nil {
		cfg.MaxFailedAttempts = *fc.MaxFailedAttempts
	}
	if fc.LockoutCheckInterval != nil {
		cfg.LockoutCheckInterval = fc.LockoutCheckInterval.Duration
	}
	if len(fc.LockoutSchedule) > 0 {
		schedule := make([]time.Duration, len(fc.LockoutSchedule))
		for i, d := range fc.LockoutSchedule {
			schedule[i] = d.Duration
		}
		cfg.LockoutSchedule = schedule
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
