// Package migrations embeds the goose schema migrations for each supported
// SQL backend.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Directories inside Migrations, keyed by goose dialect.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
