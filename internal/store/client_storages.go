package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

// ClientStorages aggregates the client's local persistence.
type ClientStorages struct {
	Cache  LocalCache
	Outbox BroadcastOutbox

	db *DB
}

// NewClientStorages opens the local SQLite file and applies its migrations.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new client storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Cache:  NewLocalCache(db, logger),
		Outbox: NewBroadcastOutbox(db, logger),
		db:     db,
	}, nil
}

// Close closes the SQLite connection.
func (s *ClientStorages) Close() error {
	return s.db.Close()
}
