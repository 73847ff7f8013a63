package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/model"
)

const resetTokenBytes = 32

// PasswordResetStore keeps at most one live reset token per user. Tokens
// are opaque random values; storage is the only source of truth.
type PasswordResetStore struct {
	repo   PasswordResetRepository
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewPasswordResetStore(repo PasswordResetRepository, ttl time.Duration) *PasswordResetStore {
	return &PasswordResetStore{repo: repo, ttl: ttl, now: time.Now, random: rand.Reader}
}

// Issue replaces any previous reset token of userID.
func (s *PasswordResetStore) Issue(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(s.random, raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expiresAt := s.now().Add(s.ttl)

	if err := s.repo.ReplacePasswordResetToken(ctx, userID, hashToken(token), expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Find returns (nil, nil) when token does not match a live record.
func (s *PasswordResetStore) Find(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	record, err := s.repo.FindPasswordResetToken(ctx, hashToken(token), s.now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *PasswordResetStore) Revoke(ctx context.Context, token string) error {
	_, err := s.repo.DeletePasswordResetToken(ctx, hashToken(token))
	return err
}

func (s *PasswordResetStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.repo.DeletePasswordResetTokensByUser(ctx, userID)
	return err
}

func (s *PasswordResetStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredPasswordResetTokens(ctx, s.now())
}
