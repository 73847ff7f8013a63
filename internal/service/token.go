package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenPayload is the identity carried by access and refresh tokens.
type TokenPayload struct {
	ID    uuid.UUID
	Email string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 tokens. Access and refresh tokens use
// separate keys so one can never be accepted as the other.
type Signer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewSigner(settings AuthSettings) *Signer {
	return &Signer{
		accessKey:  settings.AccessSecret,
		refreshKey: settings.RefreshSecret,
		accessTTL:  settings.AccessTTL,
		refreshTTL: settings.RefreshTTL,
		now:        time.Now,
	}
}

func (s *Signer) SignAccess(payload TokenPayload) (string, time.Time, error) {
	return s.sign(payload, s.accessKey, s.accessTTL)
}

func (s *Signer) SignRefresh(payload TokenPayload) (string, time.Time, error) {
	return s.sign(payload, s.refreshKey, s.refreshTTL)
}

func (s *Signer) VerifyAccess(token string) (*TokenPayload, error) {
	return s.verify(token, s.accessKey)
}

func (s *Signer) VerifyRefresh(token string) (*TokenPayload, error) {
	return s.verify(token, s.refreshKey)
}

func (s *Signer) sign(payload TokenPayload, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl).Truncate(time.Second)
	claims := tokenClaims{
		Email: payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *Signer) verify(tokenStr string, key []byte) (*TokenPayload, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &TokenPayload{ID: id, Email: claims.Email}, nil
}

// hashToken is the storage key for a plaintext token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
