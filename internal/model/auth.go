package model

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest has no binding rules: logout with a missing token is a no-op.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type ProtectedResponse struct {
	Message string    `json:"message"`
	User    *AuthUser `json:"user"`
}

// AuthUser is the identity attached to a request by the auth middleware.
type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type User struct {
	ID           uuid.UUID
	Name         string `validate:"required"`
	Email        string `validate:"required,email"`
	PasswordHash string `validate:"required"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Response() UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// RefreshToken is a persisted refresh token. Only the SHA-256 hash of the
// plaintext is ever stored.
type RefreshToken struct {
	ID        int64
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type PasswordResetToken struct {
	ID        int64
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ResetMessage is what a notifier delivers to the account owner.
type ResetMessage struct {
	To        string
	Name      string
	Token     string
	URL       string
	ExpiresAt time.Time
}
