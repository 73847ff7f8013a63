package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacePasswordResetToken(t *testing.T) {
	repo, mock := newMockDB(t)
	userID := uuid.New()
	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE user_id`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO password_reset_tokens`).
		WithArgs(userID, "hash-2", expires).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplacePasswordResetToken(context.Background(), userID, "hash-2", expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPasswordResetToken(t *testing.T) {
	repo, mock := newMockDB(t)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM password_reset_tokens`).
		WithArgs("hash-1", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
			AddRow(int64(1), userID, "hash-1", now.Add(time.Hour), now))
	mock.ExpectQuery(`FROM password_reset_tokens`).
		WithArgs("hash-gone", now).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.FindPasswordResetToken(context.Background(), "hash-1", now)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	_, err = repo.FindPasswordResetToken(context.Background(), "hash-gone", now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePasswordResetTokens(t *testing.T) {
	repo, mock := newMockDB(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE token_hash`).
		WithArgs("hash-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE user_id`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE expires_at`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	deleted, err := repo.DeletePasswordResetToken(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := repo.DeletePasswordResetTokensByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteExpiredPasswordResetTokens(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
