package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldreports/internal/shared/testutil"
)

func TestHealthService_Readiness(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	t.Run("store up", func(t *testing.T) {
		store := new(MockReportStore)
		store.On("Ping", mock.Anything).Return(nil)

		hs := NewHealthService("1.0.0", "", store, nil, logger)
		status := hs.ReadinessCheck(context.Background())

		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, "ready", status.Services["storage"].Status)
		assert.NotContains(t, status.Services, "queue")
		assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)
	})

	t.Run("store down", func(t *testing.T) {
		store := new(MockReportStore)
		store.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		hs := NewHealthService("1.0.0", "", store, nil, logger)
		status := hs.ReadinessCheck(context.Background())

		assert.Equal(t, "not_ready", status.Status)
		assert.Contains(t, status.Services["storage"].Message, "connection refused")
		assert.Equal(t, "degraded", hs.HealthCheck(context.Background()).Status)
		assert.True(t, handler.ContainsMessage("Dependency not ready"))
	})

	t.Run("queue down", func(t *testing.T) {
		store := new(MockReportStore)
		store.On("Ping", mock.Anything).Return(nil)
		queue := new(MockReportStore)
		queue.On("Ping", mock.Anything).Return(errors.New("channel closed"))

		hs := NewHealthService("1.0.0", "", store, queue, logger)
		status := hs.ReadinessCheck(context.Background())

		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "ready", status.Services["storage"].Status)
		assert.Equal(t, "not_ready", status.Services["queue"].Status)
	})

	t.Run("no store", func(t *testing.T) {
		hs := NewHealthService("1.0.0", "", nil, nil, logger)
		assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
	})
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-10-01T00:00:00Z", nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, "1.2.3", live.Version)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2026-10-01T00:00:00Z", version["build_time"])
}
