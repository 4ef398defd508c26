// Package migrations embeds the goose schema migrations for the SQL storage
// backends, one directory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
