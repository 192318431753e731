package hub

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediateFirstCycle(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler(SchedulerConfig{Interval: time.Hour}, nil, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never ran")
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Interval: time.Hour}, nil, func(context.Context) {})

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestSchedulerSkipsWhileHidden(t *testing.T) {
	var cycles atomic.Int64
	visible := &FocusTracker{}
	visible.SetFocused(false)

	s := NewScheduler(SchedulerConfig{Interval: 10 * time.Millisecond}, visible, func(context.Context) {
		cycles.Add(1)
	})

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), cycles.Load())

	// Ticks resume running cycles as soon as the surface is visible again.
	visible.SetFocused(true)
	assert.Eventually(t, func() bool { return cycles.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
}

func TestSchedulerSerializesCycles(t *testing.T) {
	var inFlight atomic.Int64
	var overlapped atomic.Bool

	s := NewScheduler(SchedulerConfig{Interval: 5 * time.Millisecond}, nil, func(context.Context) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
	})

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.False(t, overlapped.Load(), "cycles must never overlap")
}

func TestSchedulerStopWaitsForCycle(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool

	s := NewScheduler(SchedulerConfig{Interval: time.Hour}, nil, func(ctx context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	require.NoError(t, s.Start(context.Background()))
	<-started
	require.NoError(t, s.Stop())
	assert.True(t, finished.Load(), "Stop must wait out the in-flight cycle")
	assert.False(t, s.IsRunning())
}

func TestSchedulerSyncNow(t *testing.T) {
	var cycles atomic.Int64
	s := NewScheduler(SchedulerConfig{Interval: time.Hour}, nil, func(context.Context) {
		cycles.Add(1)
	})

	assert.ErrorIs(t, s.SyncNow(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool { return cycles.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.SyncNow())
	assert.Eventually(t, func() bool { return cycles.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}
