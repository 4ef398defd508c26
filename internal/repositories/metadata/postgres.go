package metadata

import "github.com/dmitrijs2005/pingate/internal/dbx"

var postgresQueries = queries{
	get: `SELECT value FROM metadata WHERE key = $1`,
	upsert: `
		INSERT INTO metadata (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`,
	delete: `DELETE FROM metadata WHERE key = $1`,
	clear:  `DELETE FROM metadata`,
	list:   `SELECT key, value FROM metadata`,
}

// PostgresRepository stores metadata in PostgreSQL through the pgx stdlib
// driver.
type PostgresRepository struct {
	sqlRepository
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{sqlRepository{db: db, q: postgresQueries}}
}
