package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

// Storages aggregates the server repositories.
type Storages struct {
	UserRepository         UserRepository
	RecordRepository       RecordRepository
	RefreshTokenRepository RefreshTokenRepository

	db *DB
}

// NewStorages connects to PostgreSQL, applies migrations and builds the
// repositories.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newStorages(db, logger), nil
}

func newStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		UserRepository:         NewUserRepository(db, logger),
		RecordRepository:       NewRecordRepository(db, logger),
		RefreshTokenRepository: NewRefreshTokenRepository(db, logger),
		db:                     db,
	}
}

// Close closes the underlying connection pool.
func (s *Storages) Close() error {
	return s.db.Close()
}
