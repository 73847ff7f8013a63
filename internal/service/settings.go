package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sportevents/backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

type AuthSettings struct {
	AccessSecret     []byte
	RefreshSecret    []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PasswordResetTTL time.Duration
	BcryptCost       int
	SweepInterval    time.Duration
}

func ParseAuthSettings(cfg config.AuthConfig) (AuthSettings, error) {
	if strings.TrimSpace(cfg.AccessSecret) == "" {
		return AuthSettings{}, fmt.Errorf("%w: JWT_ACCESS_SECRET is required", ErrMisconfigured)
	}
	if strings.TrimSpace(cfg.RefreshSecret) == "" {
		return AuthSettings{}, fmt.Errorf("%w: JWT_REFRESH_SECRET is required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return AuthSettings{}, fmt.Errorf("%w: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ", ErrMisconfigured)
	}

	accessTTL, err := parsePositiveDuration(cfg.AccessTTL)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}
	refreshTTL, err := parsePositiveDuration(cfg.RefreshTTL)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}
	resetTTL, err := parsePositiveDuration(cfg.PasswordResetTTL)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid PASSWORD_RESET_TTL", ErrMisconfigured)
	}

	sweep, err := time.ParseDuration(strings.TrimSpace(cfg.SweepInterval))
	if err != nil || sweep < 0 {
		return AuthSettings{}, fmt.Errorf("%w: invalid TOKEN_SWEEP_INTERVAL", ErrMisconfigured)
	}

	cost, err := strconv.Atoi(strings.TrimSpace(cfg.BcryptCost))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return AuthSettings{}, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
	}

	return AuthSettings{
		AccessSecret:     []byte(cfg.AccessSecret),
		RefreshSecret:    []byte(cfg.RefreshSecret),
		AccessTTL:        accessTTL,
		RefreshTTL:       refreshTTL,
		PasswordResetTTL: resetTTL,
		BcryptCost:       cost,
		SweepInterval:    sweep,
	}, nil
}

func parsePositiveDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", value)
	}
	return d, nil
}
