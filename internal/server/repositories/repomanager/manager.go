// Package repomanager vends repository implementations for the configured
// storage dialect. Repositories are bound per call to a dbx.DBTX so that
// services can run them on a *sql.DB or inside a transaction.
package repomanager

import (
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/dashboard"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/patients"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/clinicdesk/internal/server/storage"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Patients(db dbx.DBTX) patients.Repository
	Dashboard(db dbx.DBTX) dashboard.Repository
}

// New returns the manager for dialect.
func New(dialect storage.Dialect) (RepositoryManager, error) {
	switch dialect {
	case storage.DialectPostgres:
		return &PostgresRepositoryManager{}, nil
	case storage.DialectSQLite:
		return &SQLiteRepositoryManager{}, nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", dialect)
	}
}

// PostgresRepositoryManager vends pgx-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Patients(db dbx.DBTX) patients.Repository {
	return patients.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Dashboard(db dbx.DBTX) dashboard.Repository {
	return dashboard.NewPostgresRepository(db)
}

// SQLiteRepositoryManager vends repositories for the embedded sqlite mode.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Patients(db dbx.DBTX) patients.Repository {
	return patients.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Dashboard(db dbx.DBTX) dashboard.Repository {
	return dashboard.NewSQLiteRepository(db)
}
