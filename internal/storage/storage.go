// Package storage opens the metadata backend selected by configuration and
// applies schema migrations for the SQL dialects.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dmitrijs2005/pingate/internal/filex"
	"github.com/dmitrijs2005/pingate/internal/repositories/metadata"
	"github.com/dmitrijs2005/pingate/internal/storage/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Repositories bundles the opened store with whatever must be closed on exit.
type Repositories struct {
	Metadata metadata.Repository
	close    func() error
}

// Close releases the underlying connection, if any.
func (r *Repositories) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// RunMigrations applies the embedded migrations for dialect ("sqlite" or
// "postgres") to db. Already applied versions are skipped.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch driver {
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "sqlite"
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "postgres"
	default:
		return fmt.Errorf("%w: %q has no migrations", ErrUnknownDriver, driver)
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Open connects to the backend named by driver. For sqlite dsn is a file
// path (or ":memory:"), for postgres a pgx connection string, for redis a
// redis:// URL or host:port. dsn is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (*Repositories, error) {
	switch driver {
	case DriverMemory:
		return &Repositories{Metadata: metadata.NewMemoryRepository()}, nil

	case DriverSQLite, DriverPostgres:
		sqlDriver := "sqlite"
		if driver == DriverPostgres {
			sqlDriver = "pgx"
		} else if isFileDSN(dsn) {
			if _, err := filex.EnsureParentDir(dsn); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open(sqlDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if driver == DriverSQLite {
			// one writer keeps SQLite free of "database is locked" and makes
			// :memory: behave as a single database
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		if err := RunMigrations(ctx, db, driver); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}

		var repo metadata.Repository
		if driver == DriverSQLite {
			repo = metadata.NewSQLiteRepository(db)
		} else {
			repo = metadata.NewPostgresRepository(db)
		}
		return &Repositories{Metadata: repo, close: db.Close}, nil

	case DriverRedis:
		client, err := metadata.ConnectRedis(dsn)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		repo := metadata.NewRedisRepository(client, metadata.DefaultRedisPrefix)
		return &Repositories{Metadata: repo, close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// isFileDSN reports whether an sqlite dsn names a plain file on disk.
func isFileDSN(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}
