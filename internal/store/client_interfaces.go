package store

import (
	"context"
	"time"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalCache is the client's durable key-value store. It survives restarts
// and is shared by every client instance using the same file. Values are
// stored as JSON; concurrent writers follow last-write-wins.
type LocalCache interface {
	// Get decodes the value stored under key into dest.
	// Returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string, dest any) error
	// Put encodes value as JSON and stores it under key.
	Put(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// OutboxEntry is one cross-instance message stored in the shared file.
type OutboxEntry struct {
	Seq        int64
	InstanceID string
	Payload    []byte
	CreatedAt  time.Time
}

// BroadcastOutbox is an append-only message log polled by client instances.
type BroadcastOutbox interface {
	// Append stores payload and returns its sequence number.
	Append(ctx context.Context, instanceID string, payload []byte) (int64, error)
	// ReadAfter returns up to limit entries with Seq > seq in order.
	ReadAfter(ctx context.Context, seq int64, limit int) ([]OutboxEntry, error)
	// LastSeq returns the highest stored sequence number, 0 when empty.
	LastSeq(ctx context.Context) (int64, error)
	// Trim drops entries created before cutoff.
	Trim(ctx context.Context, cutoff time.Time) error
}
