// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client-side collaborators of the sync engine
// that talk to the go-plan-keeper server.
//
// [RemoteStore] persists and lists records, [SessionProvider] owns the
// authenticated session and [Prober] answers whether the server is reachable.
// The package ships an HTTP/REST implementation of the first two
// ([NewHTTPServerAdapter]) and a gRPC health implementation of the third
// ([NewGRPCHealthProber]).
//
// Every failure returned by this package wraps one of the sentinels in
// errors.go, so callers classify errors with [errors.Is] and never by
// message text.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RemoteStore is the remote persistence backend of records.
type RemoteStore interface {
	// GetAll returns every record owned by ownerID.
	GetAll(ctx context.Context, ownerID int64) ([]models.Record, error)

	// Save creates the record when it has no ID yet and updates it
	// otherwise. The returned record carries the server-assigned ID.
	// Creation is idempotent on (ownerID, record.ClientSideID).
	Save(ctx context.Context, record models.Record, ownerID int64) (models.Record, error)

	// Delete removes the record with the given server ID.
	Delete(ctx context.Context, id string) error

	// SubscribeToChanges streams change notifications for ownerID into
	// callback until ctx is done or the stream breaks. It blocks.
	SubscribeToChanges(ctx context.Context, ownerID int64, callback func(models.ChangeEvent)) error
}

// SessionProvider owns the authenticated session of the client.
type SessionProvider interface {
	// GetSession confirms the current session with the server and returns
	// it with a fresh account status. Returns [ErrNoSession] when there is
	// no usable session and [ErrAborted] when the request itself was cut off.
	GetSession(ctx context.Context) (*models.Session, error)

	// RestoreSession exchanges the stored refresh token for a new access
	// token. Returns false without error when there is nothing to restore.
	RestoreSession(ctx context.Context) (bool, error)

	// Login authenticates with credentials and stores the new session.
	Login(ctx context.Context, login, password string) (*models.Session, error)

	// Register creates an account and stores the new session.
	Register(ctx context.Context, login, password string) (*models.Session, error)

	// SetSession replaces the session held in memory, e.g. one loaded from
	// the local cache.
	SetSession(session *models.Session)

	// Session returns a copy of the session held in memory, or nil.
	Session() *models.Session
}

// Prober checks whether the server is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}
