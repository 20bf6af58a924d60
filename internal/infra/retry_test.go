package infra_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hactl/internal/infra"
)

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("503")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	notFound := errors.New("404")
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return infra.Permanent(notFound)
	})

	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry()
	cfg.InitialDelay = time.Second
	err := infra.WithRetry(ctx, cfg, func() error { return errors.New("down") })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.True(t, infra.IsRetryableHTTPStatus(429))
	assert.True(t, infra.IsRetryableHTTPStatus(502))
	assert.False(t, infra.IsRetryableHTTPStatus(400))
	assert.False(t, infra.IsRetryableHTTPStatus(401))
}
