package registry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedmesh/fedmesh/federation"
)

func TestLoopRunsRounds(t *testing.T) {
	var rounds atomic.Int64
	l := &loop{
		name:     "test",
		interval: 10 * time.Millisecond,
		round: func(context.Context) error {
			rounds.Add(1)

			return nil
		},
		logger:   discardLogger(),
		stopChan: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		done <- l.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return rounds.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	l.Stop()
	assert.NoError(t, <-done)
}

func TestLoopSurvivesRoundErrors(t *testing.T) {
	var rounds atomic.Int64
	l := &loop{
		name:     "test",
		interval: 10 * time.Millisecond,
		round: func(context.Context) error {
			rounds.Add(1)

			return assert.AnError
		},
		logger:   discardLogger(),
		stopChan: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		done <- l.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return rounds.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	l.Stop()
	assert.NoError(t, <-done)
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	svc, _ := newTestService(federation.DefaultConfig(), newFakePeerClient())
	l := NewHealthLoop(svc, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- l.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "graceful cancellation is not a loop failure")
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}
