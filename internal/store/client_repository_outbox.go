package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

const (
	appendOutbox = `INSERT INTO broadcast_outbox (instance_id, payload, created_at) VALUES (?, ?, ?);`

	readOutboxAfter = `SELECT seq, instance_id, payload, created_at
		FROM broadcast_outbox
		WHERE seq > ?
		ORDER BY seq
		LIMIT ?;`

	lastOutboxSeq = `SELECT COALESCE(MAX(seq), 0) FROM broadcast_outbox;`

	trimOutbox = `DELETE FROM broadcast_outbox WHERE created_at < ?;`
)

type broadcastOutbox struct {
	*DB
	logger *logger.Logger
}

// NewBroadcastOutbox returns a [BroadcastOutbox] stored in the shared
// SQLite file.
func NewBroadcastOutbox(db *DB, logger *logger.Logger) BroadcastOutbox {
	return &broadcastOutbox{DB: db, logger: logger}
}

func (o *broadcastOutbox) Append(ctx context.Context, instanceID string, payload []byte) (int64, error) {
	res, err := o.DB.ExecContext(ctx, appendOutbox, instanceID, payload, time.Now().UTC())
	if err != nil {
		o.logger.Err(err).Str("func", "broadcastOutbox.Append").Msg("failed to append message")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return seq, nil
}

func (o *broadcastOutbox) ReadAfter(ctx context.Context, seq int64, limit int) ([]OutboxEntry, error) {
	rows, err := o.DB.QueryContext(ctx, readOutboxAfter, seq, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.Seq, &e.InstanceID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (o *broadcastOutbox) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := o.DB.QueryRowContext(ctx, lastOutboxSeq).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return seq, nil
}

func (o *broadcastOutbox) Trim(ctx context.Context, cutoff time.Time) error {
	if _, err := o.DB.ExecContext(ctx, trimOutbox, cutoff.UTC()); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}
