package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/devcamper/internal/db"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/dberrors"
	"github.com/yigit/devcamper/internal/pkg/logger"
)

// TokenRepository stores refresh tokens as SHA-256 hashes. A refresh token is
// single use: ConsumeToken revokes it in the same statement that reads it.
type TokenRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(conn db.DBTX) *TokenRepository {
	return &TokenRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a freshly issued refresh token for userID
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token_hash", "user_id", "expiry_date").
		Values(auth.HashToken(token), userID, expiryDate).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create refresh token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrTokenInvalid
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error storing refresh token")
		return fmt.Errorf("error creating refresh token: %w", err)
	}
	return nil
}

// ConsumeToken revokes an active refresh token and returns its owner. Of two
// concurrent calls with the same token only one succeeds.
func (r *TokenRepository) ConsumeToken(ctx context.Context, token string) (int64, error) {
	hash := auth.HashToken(token)

	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token_hash": hash, "is_revoked": false}).
		Where("expiry_date > NOW()").
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build consume refresh token query: %w", err)
	}

	var userID int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Msg("Error consuming refresh token")
		return 0, fmt.Errorf("error consuming refresh token: %w", err)
	}
	return 0, r.rejectReason(ctx, hash)
}

// rejectReason tells why a token hash could not be consumed
func (r *TokenRepository) rejectReason(ctx context.Context, hash string) error {
	sql, args, err := r.sb.Select("is_revoked").
		From("refresh_tokens").
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build refresh token lookup query: %w", err)
	}

	var revoked bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTokenNotFound
		}
		return fmt.Errorf("error looking up refresh token: %w", err)
	}
	if revoked {
		return apperrors.ErrTokenRevoked
	}
	return apperrors.ErrTokenExpired
}

// RevokeAllUserTokens ends every session of userID
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke user tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking user refresh tokens")
		return fmt.Errorf("error revoking user tokens: %w", err)
	}

	logger.Debug().Int64("userID", userID).Int64("revoked", tag.RowsAffected()).Msg("Refresh tokens revoked")
	return nil
}

// CleanupExpiredTokens deletes refresh tokens that can no longer be used:
// expired ones and, since tokens are single use, revoked ones.
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Expr("expiry_date <= NOW()"),
			squirrel.Eq{"is_revoked": true},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup refresh tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error cleaning up refresh tokens")
		return 0, fmt.Errorf("error cleaning up refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
