package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/herostore/internal/dbx"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/heroes"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Heroes(db dbx.DBTX) heroes.Repository
}
