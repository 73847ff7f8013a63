package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/model"
)

// RefreshTokenStore persists refresh tokens by hash. The plaintext leaves
// the store only as the return value of Issue and Rotate.
type RefreshTokenStore struct {
	repo   RefreshTokenRepository
	signer *Signer
	now    func() time.Time
}

func NewRefreshTokenStore(repo RefreshTokenRepository, signer *Signer) *RefreshTokenStore {
	return &RefreshTokenStore{repo: repo, signer: signer, now: time.Now}
}

func (s *RefreshTokenStore) Issue(ctx context.Context, userID uuid.UUID, payload TokenPayload) (string, error) {
	token, expiresAt, err := s.signer.SignRefresh(payload)
	if err != nil {
		return "", err
	}
	if err := s.repo.InsertRefreshToken(ctx, userID, hashToken(token), expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// Find verifies the token signature before touching storage. It returns
// (nil, nil) when no live record exists: never issued, revoked and expired
// look the same to the caller.
func (s *RefreshTokenStore) Find(ctx context.Context, token string) (*model.RefreshToken, error) {
	if _, err := s.signer.VerifyRefresh(token); err != nil {
		return nil, err
	}
	record, err := s.repo.FindRefreshToken(ctx, hashToken(token), s.now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Revoke is a no-op for unknown tokens.
func (s *RefreshTokenStore) Revoke(ctx context.Context, token string) error {
	_, err := s.repo.DeleteRefreshToken(ctx, hashToken(token))
	return err
}

func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.repo.DeleteRefreshTokensByUser(ctx, userID)
	return err
}

// Rotate consumes oldToken and issues its replacement atomically. When
// oldToken was already consumed nothing is issued.
func (s *RefreshTokenStore) Rotate(ctx context.Context, oldToken string, userID uuid.UUID, payload TokenPayload) (string, error) {
	token, expiresAt, err := s.signer.SignRefresh(payload)
	if err != nil {
		return "", err
	}
	err = s.repo.RotateRefreshToken(ctx, hashToken(oldToken), userID, hashToken(token), expiresAt)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", AuthenticationError(msgInvalidRefreshToken, err)
		}
		return "", err
	}
	return token, nil
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredRefreshTokens(ctx, s.now())
}
