package store

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"user_id", "login", "password_hash", "status", "created_at"}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(newDBFromSQL(db), logger.Nop())
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hash", models.AccountActive).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "alice", "hash", "active", now))

	user, err := repo.CreateUser(testContext(), models.User{Login: "alice", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.Equal(t, models.AccountActive, user.Status)
}

func TestUserRepository_CreateUser_Duplicate(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.CreateUser(testContext(), models.User{Login: "alice", Password: "hash"})
	assert.ErrorIs(t, err, ErrLoginAlreadyExists)
}

func TestUserRepository_FindUserByLogin(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE login = $1")).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(2), "bob", "hash", "pending", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE login = $1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindUserByLogin(testContext(), "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AccountPending, user.Status)

	_, err = repo.FindUserByLogin(testContext(), "nobody")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestRefreshTokenRepository_FindMissing(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRefreshTokenRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("FROM refresh_tokens").
		WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at"}))

	_, err := repo.FindRefreshToken(testContext(), "h")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	assert.Equal(t, Retryable, c.Classify(&pgconn.PgError{Code: pgerrcode.SerializationFailure}))
	assert.Equal(t, Retryable, c.Classify(&pgconn.PgError{Code: pgerrcode.CannotConnectNow}))
	assert.Equal(t, NonRetryable, c.Classify(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.Equal(t, NonRetryable, c.Classify(assert.AnError))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}
