package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	msgUserExists          = "User already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidRefreshToken = "Invalid or expired refresh token"
	msgInvalidResetToken   = "Invalid or expired reset token"
	msgInvalidAccessToken  = "Invalid or expired token"
	msgUserNotFound        = "User not found"
)

// ResetNotifier delivers a plaintext reset token to the account owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, msg model.ResetMessage) error
}

// AuthRecorder receives one observation per auth operation.
type AuthRecorder interface {
	ObserveAuth(operation, result string)
}

type AuthOptions struct {
	FrontendURL string
	Notifier    ResetNotifier
	Recorder    AuthRecorder
	Hasher      PasswordHasher
	Logger      *zap.Logger
}

type AuthService struct {
	users       UserRepository
	signer      *Signer
	hasher      PasswordHasher
	refresh     *RefreshTokenStore
	resets      *PasswordResetStore
	notifier    ResetNotifier
	recorder    AuthRecorder
	logger      *zap.Logger
	frontendURL string
	dummyHash   string

	inflight singleflight.Group
}

func NewAuthService(repo AuthRepository, settings AuthSettings, opts AuthOptions) (*AuthService, error) {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = BcryptHasher{Cost: settings.BcryptCost}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Compared against when the email is unknown so login costs the same
	// whether or not the account exists.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: hash dummy password: %v", ErrMisconfigured, err)
	}

	signer := NewSigner(settings)
	return &AuthService{
		users:       repo,
		signer:      signer,
		hasher:      hasher,
		refresh:     NewRefreshTokenStore(repo, signer),
		resets:      NewPasswordResetStore(repo, settings.PasswordResetTTL),
		notifier:    opts.Notifier,
		recorder:    opts.Recorder,
		logger:      logger,
		frontendURL: strings.TrimRight(opts.FrontendURL, "/"),
		dummyHash:   dummyHash,
	}, nil
}

func (s *AuthService) RefreshTokens() *RefreshTokenStore { return s.refresh }

func (s *AuthService) PasswordResets() *PasswordResetStore { return s.resets }

func (s *AuthService) Register(ctx context.Context, name, email, password string) (resp *model.AuthResponse, err error) {
	defer s.observe("register", &err)

	input := registration{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ConflictError(msgUserExists)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	record := model.User{Name: input.Name, Email: input.Email, PasswordHash: hash}
	if err := validateStruct(record); err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, record.Name, record.Email, record.PasswordHash)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ConflictError(msgUserExists, err)
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Login reports the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (resp *model.AuthResponse, err error) {
	defer s.observe("login", &err)

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, AuthenticationError(msgInvalidCredentials)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, AuthenticationError(msgInvalidCredentials)
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates refreshToken. Concurrent calls presenting the same token
// share one rotation and receive the same pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair *model.TokenPair, err error) {
	defer s.observe("refresh", &err)

	if strings.TrimSpace(refreshToken) == "" {
		return nil, AuthenticationError(msgInvalidRefreshToken)
	}

	v, err, _ := s.inflight.Do(hashToken(refreshToken), func() (any, error) {
		return s.rotate(context.WithoutCancel(ctx), refreshToken)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.TokenPair), nil
}

func (s *AuthService) rotate(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	record, err := s.refresh.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			return nil, AuthenticationError(msgInvalidRefreshToken, err)
		}
		return nil, err
	}
	if record == nil {
		return nil, AuthenticationError(msgInvalidRefreshToken)
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, NotFoundError(msgUserNotFound, err)
		}
		return nil, err
	}

	payload := TokenPayload{ID: user.ID, Email: user.Email}
	newRefresh, err := s.refresh.Rotate(ctx, refreshToken, user.ID, payload)
	if err != nil {
		return nil, err
	}
	access, _, err := s.signer.SignAccess(payload)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

// Logout revokes refreshToken if it is stored and succeeds either way.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer s.observe("logout", &err)

	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	return s.refresh.Revoke(ctx, refreshToken)
}

// ForgotPassword returns nil for unknown emails so callers cannot learn
// which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (err error) {
	defer s.observe("forgot_password", &err)

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return err
	}

	token, expiresAt, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	if s.notifier == nil {
		return nil
	}
	msg := model.ResetMessage{
		To:        user.Email,
		Name:      user.Name,
		Token:     token,
		URL:       s.resetLink(token),
		ExpiresAt: expiresAt,
	}
	if err := s.notifier.NotifyPasswordReset(ctx, msg); err != nil {
		s.logger.Warn("password reset notification failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// ResetPassword consumes token only after the new password is stored.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (err error) {
	defer s.observe("reset_password", &err)

	if err := validateStruct(passwordChange{Password: password}); err != nil {
		return err
	}

	record, err := s.resets.Find(ctx, token)
	if err != nil {
		return err
	}
	if record == nil {
		return ValidationError(msgInvalidResetToken)
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ValidationError(msgInvalidResetToken, err)
		}
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ValidationError(msgInvalidResetToken, err)
		}
		return err
	}

	if err := s.resets.Revoke(ctx, token); err != nil {
		return err
	}

	if err := s.RevokeAllSessions(ctx, user.ID); err != nil {
		s.logger.Warn("revoke sessions after password reset failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// RevokeAllSessions deletes every refresh token of userID.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	return s.refresh.RevokeAllForUser(ctx, userID)
}

// Authenticate resolves an access token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	payload, err := s.signer.VerifyAccess(accessToken)
	if err != nil {
		return nil, AuthenticationError(msgInvalidAccessToken, err)
	}

	user, err := s.users.GetUserByID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, AuthenticationError(msgUserNotFound, err)
		}
		return nil, err
	}

	return &model.AuthUser{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	payload := TokenPayload{ID: user.ID, Email: user.Email}

	access, _, err := s.signer.SignAccess(payload)
	if err != nil {
		return nil, err
	}
	refresh, err := s.refresh.Issue(ctx, user.ID, payload)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Response(),
	}, nil
}

func (s *AuthService) resetLink(token string) string {
	return s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func (s *AuthService) observe(operation string, errp *error) {
	if s.recorder == nil {
		return
	}
	result := "ok"
	if err := *errp; err != nil {
		if kind, ok := KindOf(err); ok {
			result = kind.String()
		} else {
			result = "error"
		}
	}
	s.recorder.ObserveAuth(operation, result)
}
