package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/observability"
)

func TestScheduleOneshotReturnsJobError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := Schedule(context.Background(), config.SchedulerConfig{Mode: "oneshot"}, func(context.Context) error {
		calls++
		return boom
	}, observability.NewNopLogger())

	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, calls)
}

func TestScheduleRejectsBadCron(t *testing.T) {
	err := Schedule(context.Background(), config.SchedulerConfig{Mode: "cron", CronExpr: "not a cron"},
		func(context.Context) error { return nil }, observability.NewNopLogger())
	assert.Error(t, err)
}

func TestScheduleIntervalRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Schedule(ctx, config.SchedulerConfig{Mode: "interval", IntervalS: 3600}, func(context.Context) error {
			calls.Add(1)
			return errors.New("logged, not returned")
		}, observability.NewNopLogger())
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduleWaitsForFirstRunAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var finished atomic.Bool

	done := make(chan error, 1)
	go func() {
		done <- Schedule(ctx, config.SchedulerConfig{Mode: "interval", IntervalS: 3600}, func(jobCtx context.Context) error {
			close(started)
			<-jobCtx.Done()
			// запись в хранилище после отмены ещё идёт
			time.Sleep(200 * time.Millisecond)
			finished.Store(true)
			return nil
		}, observability.NewNopLogger())
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, finished.Load(), "Schedule returned before the running job finished")
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
