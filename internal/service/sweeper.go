package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepRecorder receives the number of rows removed per table.
type SweepRecorder interface {
	ObserveSweep(table string, n int64)
}

// TokenSweeper periodically deletes expired refresh and reset tokens.
// Lookups already ignore expired rows; the sweep only keeps tables small.
type TokenSweeper struct {
	refresh  *RefreshTokenStore
	resets   *PasswordResetStore
	interval time.Duration
	recorder SweepRecorder
	logger   *zap.Logger
}

func NewTokenSweeper(auth *AuthService, interval time.Duration, recorder SweepRecorder, logger *zap.Logger) *TokenSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSweeper{
		refresh:  auth.RefreshTokens(),
		resets:   auth.PasswordResets(),
		interval: interval,
		recorder: recorder,
		logger:   logger,
	}
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping.
func (s *TokenSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("token sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *TokenSweeper) SweepOnce(ctx context.Context) {
	s.sweep(ctx, "refresh_tokens", s.refresh.DeleteExpired)
	s.sweep(ctx, "password_reset_tokens", s.resets.DeleteExpired)
}

func (s *TokenSweeper) sweep(ctx context.Context, table string, fn func(context.Context) (int64, error)) {
	n, err := fn(ctx)
	if err != nil {
		s.logger.Warn("token sweep failed", zap.String("table", table), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("expired tokens removed", zap.String("table", table), zap.Int64("count", n))
	}
	if s.recorder != nil {
		s.recorder.ObserveSweep(table, n)
	}
}
