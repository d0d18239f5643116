package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchkit/pokecat/logger"
)

func noopRefresh(context.Context) error { return nil }

func TestNew_Validation(t *testing.T) {
	_, err := New(logger.Nop(), nil, nil)
	assert.ErrorIs(t, err, ErrNilRefreshFunc)

	_, err = New(logger.Nop(), &Config{Spec: "not a cron spec"}, noopRefresh)
	assert.Error(t, err)

	_, err = New(logger.Nop(), &Config{Timeout: -time.Second}, noopRefresh)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(nil, nil, noopRefresh)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, r.timeout)

	// Zero-value fields merge with defaults.
	r, err = New(logger.Nop(), &Config{Spec: "@every 1h"}, noopRefresh)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, r.timeout)
}

func TestRefresher_FiresOnSchedule(t *testing.T) {
	var runs atomic.Int32
	r, err := New(logger.Nop(), &Config{Spec: "@every 10ms"}, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	r.Start()
	defer r.Close()

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		5*time.Second, 5*time.Millisecond)
}

func TestRefresher_SurvivesPanic(t *testing.T) {
	var runs atomic.Int32
	r, err := New(logger.Nop(), &Config{Spec: "@every 10ms"}, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return nil
	})
	require.NoError(t, err)

	r.Start()
	defer r.Close()

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		5*time.Second, 5*time.Millisecond, "a panicking run must not kill the schedule")
}

func TestRefresher_RunHonorsTimeout(t *testing.T) {
	done := make(chan error, 1)
	r, err := New(logger.Nop(), &Config{Spec: "@every 24h", Timeout: 20 * time.Millisecond},
		func(ctx context.Context) error {
			<-ctx.Done()
			done <- ctx.Err()
			return ctx.Err()
		})
	require.NoError(t, err)

	r.run()
	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
}

func TestRefresher_CloseWaitsForRunningRefresh(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var finished atomic.Bool
	r, err := New(logger.Nop(), &Config{Spec: "@every 10ms"}, func(ctx context.Context) error {
		once.Do(func() { close(started) })
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	require.NoError(t, err)

	r.Start()
	<-started
	r.Close()
	assert.True(t, finished.Load(), "Close must wait for the in-flight refresh")
}
