package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

const (
	getCacheEntry = `SELECT value FROM cache_entries WHERE key = ?;`

	putCacheEntry = `INSERT INTO cache_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;`

	deleteCacheEntry = `DELETE FROM cache_entries WHERE key = ?;`
)

type localCache struct {
	*DB
	logger *logger.Logger
}

// NewLocalCache returns a [LocalCache] stored in the cache_entries table.
func NewLocalCache(db *DB, logger *logger.Logger) LocalCache {
	return &localCache{DB: db, logger: logger}
}

func (c *localCache) Get(ctx context.Context, key string, dest any) error {
	var raw []byte
	err := c.DB.QueryRowContext(ctx, getCacheEntry, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCacheMiss
	}
	if err != nil {
		c.logger.Err(err).Str("func", "localCache.Get").Str("key", key).Msg("failed to read cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Err(err).Str("func", "localCache.Get").Str("key", key).Msg("failed to decode cache entry")
		return fmt.Errorf("%w: %w", ErrDecodingValue, err)
	}

	return nil
}

func (c *localCache) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	if _, err := c.DB.ExecContext(ctx, putCacheEntry, key, raw); err != nil {
		c.logger.Err(err).Str("func", "localCache.Put").Str("key", key).Msg("failed to write cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

func (c *localCache) Delete(ctx context.Context, key string) error {
	if _, err := c.DB.ExecContext(ctx, deleteCacheEntry, key); err != nil {
		c.logger.Err(err).Str("func", "localCache.Delete").Str("key", key).Msg("failed to delete cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}
