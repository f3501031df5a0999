package service

import (
	"context"

	"github.com/MKhiriev/go-plan-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService manages accounts and tokens of the reference server.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)

	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// IssueRefreshToken stores a new refresh token for user and returns
	// its plaintext form. Only a keyed hash is persisted.
	IssueRefreshToken(ctx context.Context, user models.User) (string, error)
	// Refresh consumes refreshToken and returns its user together with a
	// replacement refresh token.
	Refresh(ctx context.Context, refreshToken string) (models.User, string, error)
}

// RecordService stores the records of authenticated owners.
type RecordService interface {
	ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error)
	// SaveRecord updates the record when it carries an id and creates it
	// otherwise. Creation is idempotent on (owner, client side id).
	SaveRecord(ctx context.Context, record models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, ownerID int64, id string) error
}

// ChangeBroker fans record changes out to the change feed subscribers of
// the same owner.
type ChangeBroker interface {
	Publish(event models.ChangeEvent)
	// Subscribe returns the event stream of ownerID and a function that
	// ends the subscription and closes the stream.
	Subscribe(ownerID int64) (<-chan models.ChangeEvent, func())
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
