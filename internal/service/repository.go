package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/model"
)

// Both *db.Postgres and *memory.Store implement every interface below.

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type RefreshTokenRepository interface {
	InsertRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error)
	DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	RotateRefreshToken(ctx context.Context, oldHash string, userID uuid.UUID, newHash string, newExpiresAt time.Time) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type PasswordResetRepository interface {
	ReplacePasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	FindPasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error)
	DeletePasswordResetToken(ctx context.Context, tokenHash string) (bool, error)
	DeletePasswordResetTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type EventRepository interface {
	CreateSportEvent(ctx context.Context, event *model.SportEvent) error
	ListSportEvents(ctx context.Context) ([]model.SportEvent, error)
	GetSportEvent(ctx context.Context, id uuid.UUID) (*model.SportEvent, error)
	UpdateSportEvent(ctx context.Context, event *model.SportEvent) error
	DeleteSportEvent(ctx context.Context, id uuid.UUID) error
}

type AuthRepository interface {
	UserRepository
	RefreshTokenRepository
	PasswordResetRepository
}

// Repository is the full storage surface selected by STORAGE_DRIVER.
type Repository interface {
	AuthRepository
	EventRepository
	Ping(ctx context.Context) error
	Close()
}
