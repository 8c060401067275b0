package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/users"
)

// Store backends accepted by New.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// RepositoryManager vends repositories bound to a SQL handle and migrates
// the schema they need.
type RepositoryManager interface {
	// DriverName is the database/sql driver to open the DSN with.
	DriverName() string
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// New returns the manager for a SQL store backend. The memory backend has no
// manager; use users.NewMemoryRepository directly.
func New(store string) (RepositoryManager, error) {
	switch store {
	case StorePostgres:
		return NewPostgresRepositoryManager(), nil
	case StoreSQLite:
		return NewSQLiteRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unsupported store %q", store)
}
