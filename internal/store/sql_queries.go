package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var recordColumns = []string{"id", "owner_id", "client_side_id", "content", "created_at", "updated_at"}

const recordReturning = "RETURNING id, owner_id, client_side_id, content, created_at, updated_at"

const (
	createUser = `INSERT INTO users (login, password_hash, status)
    VALUES ($1, $2, $3)
    RETURNING user_id, login, password_hash, status, created_at;`

	findUserByLogin = `SELECT user_id, login, password_hash, status, created_at
    FROM users
    WHERE login = $1;`

	findUserByID = `SELECT user_id, login, password_hash, status, created_at
    FROM users
    WHERE user_id = $1;`

	saveRefreshToken = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
    RETURNING id;`

	findRefreshToken = `SELECT id, user_id, token_hash, expires_at
    FROM refresh_tokens
    WHERE token_hash = $1 AND expires_at > NOW();`

	deleteRefreshToken = `DELETE FROM refresh_tokens WHERE token_hash = $1;`
)

func buildSelectRecordsQuery(_ context.Context, ownerID int64) (string, []any, error) {
	query, args, err := psql.
		Select(recordColumns...).
		From("records").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildInsertRecordQuery builds an idempotent create: repeating it with the
// same (owner_id, client_side_id) updates the existing row instead of
// creating a second one.
func buildInsertRecordQuery(_ context.Context, id string, ownerID int64, clientSideID string, content []byte) (string, []any, error) {
	query, args, err := psql.
		Insert("records").
		Columns("id", "owner_id", "client_side_id", "content").
		Values(id, ownerID, clientSideID, string(content)).
		Suffix("ON CONFLICT (owner_id, client_side_id) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW() " + recordReturning).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildUpdateRecordQuery(_ context.Context, id string, ownerID int64, content []byte) (string, []any, error) {
	query, args, err := psql.
		Update("records").
		Set("content", string(content)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix(recordReturning).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteRecordQuery(_ context.Context, id string, ownerID int64) (string, []any, error) {
	query, args, err := psql.
		Delete("records").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
