package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveAuth("login", "ok")
	m.ObserveAuth("login", "ok")
	m.ObserveAuth("login", "authentication")
	m.ObserveSweep("refresh_tokens", 3)
	m.ObserveSweep("refresh_tokens", 0)
	m.ObserveHTTP("POST", "/api/auth/login", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", "authentication")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tokensSwept.WithLabelValues("refresh_tokens")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/auth/login", "200")))
}

func TestNewMetricsTwice(t *testing.T) {
	require.NotPanics(t, func() {
		_ = NewMetrics()
		_ = NewMetrics()
	})
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "loud", App: "test", Env: "test"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
}
