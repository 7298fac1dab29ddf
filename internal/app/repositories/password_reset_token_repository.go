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
	"github.com/yigit/devcamper/internal/pkg/logger"
)

// PasswordResetTokenRepository manages password reset tokens in the database.
// Tokens are looked up by their hash; the raw value is only ever emailed.
type PasswordResetTokenRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(conn db.DBTX) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ReplaceToken drops any earlier reset token of the user and stores a new one
func (r *PasswordResetTokenRepository) ReplaceToken(ctx context.Context, userID int64, tokenHash string, expiryDate time.Time) error {
	deleteSQL, deleteArgs, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete reset tokens query: %w", err)
	}

	insertSQL, insertArgs, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token_hash", "expiry_date", "used", "created_at").
		Values(userID, tokenHash, expiryDate, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
			logger.Error().Err(err).Int64("userID", userID).Msg("Error deleting previous reset tokens")
			return fmt.Errorf("error deleting previous reset tokens: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			logger.Error().Err(err).Int64("userID", userID).Msg("Error creating password reset token")
			return fmt.Errorf("error creating password reset token: %w", err)
		}
		return nil
	})
}

// GetUserIDByToken returns the owner of a usable reset token
func (r *PasswordResetTokenRepository) GetUserIDByToken(ctx context.Context, tokenHash string) (int64, error) {
	sql, args, err := r.sb.Select("user_id", "expiry_date", "used").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	var userID int64
	var expiryDate time.Time
	var used bool

	err = r.db.QueryRow(ctx, sql, args...).Scan(&userID, &expiryDate, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error retrieving password reset token")
		return 0, fmt.Errorf("error retrieving password reset token: %w", err)
	}

	if used {
		return 0, apperrors.ErrTokenRevoked
	}
	if expiryDate.Before(time.Now()) {
		return 0, apperrors.ErrTokenExpired
	}

	return userID, nil
}

// MarkTokenAsUsed marks a token as used to prevent reuse
func (r *PasswordResetTokenRepository) MarkTokenAsUsed(ctx context.Context, tokenHash string) error {
	sql, args, err := r.sb.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark reset token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// DeleteTokensByUserID removes all reset tokens of a user
func (r *PasswordResetTokenRepository) DeleteTokensByUserID(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete reset tokens query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting password reset tokens for user: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes expired and used tokens
func (r *PasswordResetTokenRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": time.Now()},
			squirrel.Eq{"used": true},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired reset tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error deleting expired password reset tokens")
		return 0, fmt.Errorf("error deleting expired password reset tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
