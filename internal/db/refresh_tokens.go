package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/model"
)

func (db *Postgres) InsertRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := db.Pool.Exec(ctx, query, userID, tokenHash, expiresAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns the record for tokenHash only if it has not
// expired at now. Eviction by the sweeper is not relied upon.
func (db *Postgres) FindRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > $2
	`
	var token model.RefreshToken
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
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &token, nil
}

// DeleteRefreshToken reports whether a row was removed.
func (db *Postgres) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *Postgres) DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RotateRefreshToken deletes oldHash and inserts newHash in one transaction.
// If oldHash is already gone (consumed by a concurrent rotation) nothing is
// inserted and ErrNotFound is returned.
func (db *Postgres) RotateRefreshToken(ctx context.Context, oldHash string, userID uuid.UUID, newHash string, newExpiresAt time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rotate: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND user_id = $2
	`, oldHash, userID)
	if err != nil {
		return fmt.Errorf("delete old refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, newHash, newExpiresAt); err != nil {
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}

	return tx.Commit(ctx)
}

func (db *Postgres) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
