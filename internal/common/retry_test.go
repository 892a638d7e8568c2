package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrBackendUnavailable
		}
		return nil
	}, fastRetry)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhausts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrBackendUnavailable
	}, fastRetry)

	require.ErrorIs(t, err, ErrMaxRetries)
	require.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := &RetryableError{Err: errors.New("bad api key"), Retryable: false}
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	}, fastRetry)

	require.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return ErrBackendUnavailable
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.True(t, IsRetryable(NewUserError("try again", ErrBackendUnavailable)))
}

func TestUserMessage(t *testing.T) {
	plain := errors.New("disk full")
	assert.Equal(t, "disk full", UserMessage(plain))

	wrapped := fmt.Errorf("saving: %w", NewUserError("Could not save the ledger", plain))
	assert.Equal(t, "Could not save the ledger", UserMessage(wrapped))
	assert.ErrorIs(t, wrapped, plain)
	assert.Equal(t, "Could not save the ledger: disk full", NewUserError("Could not save the ledger", plain).Error())
}
