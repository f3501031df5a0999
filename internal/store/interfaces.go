package store

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts of the reference server.
type UserRepository interface {
	// CreateUser inserts a user whose Password already holds the hash.
	// Returns ErrLoginAlreadyExists on a duplicate login.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// FindUserByLogin returns ErrNoUserWasFound when absent.
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	// FindUserByID returns ErrNoUserWasFound when absent.
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
}

// RecordRepository persists client records of the reference server.
type RecordRepository interface {
	// ListRecords returns every record of ownerID ordered by creation.
	ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error)
	// CreateRecord inserts record under id, or updates the row with the same
	// (owner, client side id), so a retried create never duplicates.
	CreateRecord(ctx context.Context, id string, record models.Record) (models.Record, error)
	// UpdateRecord replaces the content of an existing record.
	// Returns ErrRecordNotFound when no row matches id and owner.
	UpdateRecord(ctx context.Context, record models.Record) (models.Record, error)
	// DeleteRecord removes a record. Returns ErrRecordNotFound when no row
	// matches id and owner.
	DeleteRecord(ctx context.Context, ownerID int64, id string) error
}

// RefreshTokenRepository persists hashed refresh tokens.
type RefreshTokenRepository interface {
	SaveRefreshToken(ctx context.Context, token models.RefreshToken) error
	// FindRefreshToken returns ErrRefreshTokenNotFound for unknown or
	// expired tokens.
	FindRefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
}
