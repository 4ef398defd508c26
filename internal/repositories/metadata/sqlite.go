package metadata

import "github.com/dmitrijs2005/pingate/internal/dbx"

var sqliteQueries = queries{
	get: `SELECT value FROM metadata WHERE key = ?`,
	upsert: `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`,
	delete: `DELETE FROM metadata WHERE key = ?`,
	clear:  `DELETE FROM metadata`,
	list:   `SELECT key, value FROM metadata`,
}

// SQLiteRepository is the on-device store.
type SQLiteRepository struct {
	sqlRepository
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository{db: db, q: sqliteQueries}}
}
