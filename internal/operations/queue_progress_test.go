// file: internal/operations/queue_progress_test.go
// version: 2.0.0
// guid: 47fe3028-5f36-49e4-82c0-418122b6f927

package operations

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPolling_RunsImmediatelyAndRepeats(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	var rounds atomic.Int32
	s.StartPolling(SlotSports, 10*time.Millisecond, func(ctx context.Context, gen Generation) error {
		if rounds.Add(1) == 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.Eventually(t, func() bool { return rounds.Load() >= 4 }, time.Second, 5*time.Millisecond,
		"a failed round must not stop polling")
}

func TestStartPolling_StopsWhenSuperseded(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	var oldRounds atomic.Int32
	s.StartPolling(SlotSports, 5*time.Millisecond, func(ctx context.Context, gen Generation) error {
		oldRounds.Add(1)
		return nil
	})
	require.Eventually(t, func() bool { return oldRounds.Load() >= 1 }, time.Second, time.Millisecond)

	s.Start(SlotSports, func(ctx context.Context, gen Generation) error {
		<-ctx.Done()
		return ctx.Err()
	})
	time.Sleep(20 * time.Millisecond)
	settled := oldRounds.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, settled, oldRounds.Load(), "superseded poller keeps ticking")
}

func TestStartPolling_CancelStopsTicker(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	var rounds atomic.Int32
	s.StartPolling(SlotSports, 5*time.Millisecond, func(ctx context.Context, gen Generation) error {
		rounds.Add(1)
		return nil
	})
	require.Eventually(t, func() bool { return rounds.Load() >= 2 }, time.Second, time.Millisecond)

	s.Cancel(SlotSports)
	time.Sleep(20 * time.Millisecond)
	settled := rounds.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, settled, rounds.Load())
	assert.Empty(t, s.Active())
}
