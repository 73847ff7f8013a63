package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/model"
)

// ReplacePasswordResetToken removes every reset token of userID and stores
// the new one, so a user never has more than one live reset token.
func (db *Postgres) ReplacePasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset token replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete previous reset tokens: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, tokenHash, expiresAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert reset token: %w", err)
	}

	return tx.Commit(ctx)
}

func (db *Postgres) FindPasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > $2
	`
	var token model.PasswordResetToken
	err := db.Pool.QueryRow(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &token, nil
}

func (db *Postgres) DeletePasswordResetToken(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return false, fmt.Errorf("delete reset token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *Postgres) DeletePasswordResetTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete reset tokens by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (db *Postgres) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
