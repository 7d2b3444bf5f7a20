package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/repository"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	query := `
		INSERT INTO user_tokens (user_id, token, type, expires_at, created_at)
		VALUES ($1, $2, 'refresh', $3, NOW())
	`

	_, err := r.db.ExecContext(ctx, query, userID, token, expiry)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_tokens
		WHERE token = $1
		AND type = 'refresh'
		AND expires_at > NOW()
		AND revoked_at IS NULL
	`

	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, apperrors.Unauthenticated("invalid or expired refresh token")
		}
		return uuid.Nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	query := `
		UPDATE user_tokens
		SET revoked_at = NOW()
		WHERE token = $1 AND type = 'refresh' AND revoked_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return checkAffected(result, "refresh token")
}

func (r *tokenRepository) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE user_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND type = 'refresh' AND revoked_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}
