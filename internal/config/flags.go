package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/pingate/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns. Other arguments, such as
// -c, are filtered out first with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-s", "-n", "-i", "-p", "-l"})

	fs := flag.NewFlagSet("pingate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorageDriver, "d", cfg.StorageDriver, "storage driver (sqlite, postgres, redis, memory)")
	fs.StringVar(&cfg.StorageDSN, "s", cfg.StorageDSN, "storage DSN")
	fs.IntVar(&cfg.MaxFailedAttempts, "n", cfg.MaxFailedAttempts, "failed attempts before lockout")
	checkInterval := fs.Int("i", int(cfg.LockoutCheckInterval.Milliseconds()), "lockout check interval (in milliseconds)")
	fs.StringVar(&cfg.PINHashAlgorithm, "p", cfg.PINHashAlgorithm, "PIN hash algorithm (argon2id, bcrypt)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.LockoutCheckInterval = time.Duration(*checkInterval) * time.Millisecond
		}
	})
	return nil
}
