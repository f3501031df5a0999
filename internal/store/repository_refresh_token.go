package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
)

type refreshTokenRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewRefreshTokenRepository(db *DB, logger *logger.Logger) RefreshTokenRepository {
	return &refreshTokenRepository{db: db, logger: logger}
}

func (r *refreshTokenRepository) SaveRefreshToken(ctx context.Context, token models.RefreshToken) error {
	log := logger.FromContext(ctx)

	var id int64
	if err := r.db.QueryRowContext(ctx, saveRefreshToken, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&id); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.SaveRefreshToken").Int64("user_id", token.UserID).Msg("failed to save refresh token")
		return r.db.wrapDBError(ErrExecutingQuery, err)
	}

	return nil
}

func (r *refreshTokenRepository) FindRefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.QueryRowContext(ctx, findRefreshToken, tokenHash).
		Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RefreshToken{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return token, nil
}

func (r *refreshTokenRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, deleteRefreshToken, tokenHash); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*refreshTokenRepository.DeleteRefreshToken").Msg("failed to delete refresh token")
		return r.db.wrapDBError(ErrExecutingQuery, err)
	}
	return nil
}
