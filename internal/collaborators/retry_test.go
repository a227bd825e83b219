package collaborators

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryScheduleSucceedsWithoutRetryOnFirstAttempt(t *testing.T) {
	calls := 0
	err := RetrySchedule(context.Background(), []int{2, 30, 60}, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryScheduleExhaustsScheduleAndReturnsLastError(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := RetrySchedule(context.Background(), []int{0, 0}, func() error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 3, calls)
}

func TestRetryScheduleStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetrySchedule(ctx, []int{10}, func() error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
