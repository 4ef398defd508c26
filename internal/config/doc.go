// Package config loads runtime configuration for the pingate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed PINGATE_, after loading a .env file from
//     the working directory when one exists.
//  3. Optional config file selected with -c or -config. Files ending in .yaml
//     or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-d string   storage driver: sqlite, postgres, redis or memory
//	-s string   storage DSN (file path, connection string or redis URL)
//	-n int      failed attempts before lockout
//	-i int      lockout check interval (milliseconds)
//	-p string   PIN hash algorithm for new enrollments: argon2id or bcrypt
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	storage_driver: sqlite
//	storage_dsn: pingate.db
//	max_failed_attempts: 3
//	lockout_schedule: [30s, 1m, 5m, 15m]
//	lockout_check_interval: 1s
//	pin_hash_algorithm: argon2id
//	log_level: info
//	log_format: text
package config
