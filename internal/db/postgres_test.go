package db

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/sportevents/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	pgxmock.PgxPoolIface
	closed bool
}

func (p *closeRecorder) Close() { p.closed = true }

func TestOpen(t *testing.T) {
	cfg := config.PostgresConfig{DatabaseURL: "postgres://app@db:5432/app?sslmode=disable"}
	errDial := errors.New("dial tcp: connection refused")
	errMigrate := errors.New("migrate up: syntax error")

	tests := []struct {
		name       string
		connectErr error
		migrateErr error
		wantErr    error
		wantSteps  []string
		wantClosed bool
	}{
		{
			name:      "connects before migrating",
			wantSteps: []string{"connect", "migrate"},
		},
		{
			name:       "unreachable database skips migrations",
			connectErr: errDial,
			wantErr:    errDial,
			wantSteps:  []string{"connect"},
		},
		{
			name:       "failed migration closes the pool",
			migrateErr: errMigrate,
			wantErr:    errMigrate,
			wantSteps:  []string{"connect", "migrate"},
			wantClosed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			pool := &closeRecorder{PgxPoolIface: mock}

			var steps []string
			connect := func(ctx context.Context, got config.PostgresConfig) (PgxPool, error) {
				steps = append(steps, "connect")
				assert.Equal(t, cfg, got)
				if tt.connectErr != nil {
					return nil, tt.connectErr
				}
				return pool, nil
			}
			migrate := func(ctx context.Context, dsn string) error {
				steps = append(steps, "migrate")
				assert.Equal(t, cfg.DatabaseURL, dsn)
				return tt.migrateErr
			}

			store, err := open(context.Background(), cfg, connect, migrate)
			assert.Equal(t, tt.wantSteps, steps)
			assert.Equal(t, tt.wantClosed, pool.closed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, store)
				return
			}
			require.NoError(t, err)
			assert.Same(t, pool, store.Pool)
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	called := false
	connect := func(ctx context.Context, cfg config.PostgresConfig) (PgxPool, error) {
		called = true
		return nil, nil
	}
	migrate := func(ctx context.Context, dsn string) error { return nil }

	_, err := open(context.Background(), config.PostgresConfig{}, connect, migrate)
	assert.Error(t, err)
	assert.False(t, called)
}
