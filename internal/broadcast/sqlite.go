package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

const (
	readBatch = 100
	// outboxRetention bounds how long published messages stay in the outbox.
	outboxRetention = 10 * time.Minute
)

// SQLiteChannel is a [Channel] backed by the outbox table of the local cache
// file. Every client instance sharing the file polls the outbox and sees
// messages published by the others.
type SQLiteChannel struct {
	outbox   store.BroadcastOutbox
	hub      *Hub
	clock    utils.Clock
	interval time.Duration
	logger   *logger.Logger

	lastSeq int64
}

// NewSQLiteChannel creates a channel polling outbox every interval.
// Messages already in the outbox are not replayed.
func NewSQLiteChannel(ctx context.Context, outbox store.BroadcastOutbox, clock utils.Clock, interval time.Duration, log *logger.Logger) (*SQLiteChannel, error) {
	last, err := outbox.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("read outbox position: %w", err)
	}

	return &SQLiteChannel{
		outbox:   outbox,
		hub:      NewHub(log),
		clock:    clock,
		interval: interval,
		logger:   log,
		lastSeq:  last,
	}, nil
}

// Publish implements [Channel]. The message is written to the outbox and
// delivered by the next poll of every instance, this one included.
func (c *SQLiteChannel) Publish(ctx context.Context, msg models.BroadcastMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast message: %w", err)
	}

	if _, err := c.outbox.Append(ctx, msg.InstanceID, payload); err != nil {
		return fmt.Errorf("append broadcast message: %w", err)
	}
	return nil
}

// Subscribe implements [Channel].
func (c *SQLiteChannel) Subscribe(handler func(models.BroadcastMessage)) func() {
	return c.hub.Subscribe(handler)
}

// Run polls the outbox until ctx is done.
func (c *SQLiteChannel) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()
	defer c.hub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			if err := c.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Err(err).Str("func", "SQLiteChannel.Run").Msg("outbox poll failed")
			}
		}
	}
}

// Poll delivers every message appended since the previous poll and trims
// expired ones.
func (c *SQLiteChannel) Poll(ctx context.Context) error {
	for {
		entries, err := c.outbox.ReadAfter(ctx, c.lastSeq, readBatch)
		if err != nil {
			return err
		}

		for _, e := range entries {
			c.lastSeq = e.Seq

			var msg models.BroadcastMessage
			if err := json.Unmarshal(e.Payload, &msg); err != nil {
				c.logger.Warn().Err(err).Str("func", "SQLiteChannel.Poll").Int64("seq", e.Seq).Msg("skipping malformed message")
				continue
			}
			c.hub.deliver(msg)
		}

		if len(entries) < readBatch {
			break
		}
	}

	return c.outbox.Trim(ctx, c.clock.Now().Add(-outboxRetention))
}
