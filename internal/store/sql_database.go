package store

import (
	"database/sql"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/migrations"
)

// DB wraps *sql.DB with the error classifier of its dialect and a logger.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	dialect            string
}

// Migrate applies the embedded migrations of the connection's dialect.
func (db *DB) Migrate() error {
	if db.dialect == dialectSQLite {
		return migrations.MigrateSQLite(db.DB)
	}
	return migrations.Migrate(db.DB)
}

// ErrorClassificator tells retryable database errors from permanent ones.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)
