// Package repomanager vends repository implementations for a storage backend
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkazmer/bookmart/internal/dbx"
	"github.com/mkazmer/bookmart/internal/server/repositories/addresses"
	"github.com/mkazmer/bookmart/internal/server/repositories/refreshsessions"
	"github.com/mkazmer/bookmart/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshSessions(db dbx.DBTX) refreshsessions.Repository
	Addresses(db dbx.DBTX) addresses.Repository
}
