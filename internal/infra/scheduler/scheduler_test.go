package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestAddCycle_RejectsInvalidSpec(t *testing.T) {
	s := NewShiftScheduler(testLogger())
	err := s.AddCycle("check", "every fortnight", time.Second, func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "check")
}

func TestScheduler_RunsCyclesWithoutOverlap(t *testing.T) {
	s := NewShiftScheduler(testLogger())

	var runs, running, overlapped int32
	err := s.AddCycle("monitor", "@every 1s", 5*time.Second, func(ctx context.Context) error {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}
		defer atomic.AddInt32(&running, -1)
		atomic.AddInt32(&runs, 1)
		time.Sleep(1500 * time.Millisecond)
		return errors.New("site down")
	})
	require.NoError(t, err)

	s.Start()
	time.Sleep(3500 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(1))
	assert.Zero(t, atomic.LoadInt32(&overlapped))
}

func TestScheduler_StopCancelsRunningCycle(t *testing.T) {
	s := NewShiftScheduler(testLogger())

	started := make(chan struct{}, 1)
	var cancelled atomic.Bool
	require.NoError(t, s.AddCycle("check", "@every 1s", time.Minute, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("cycle never started")
	}
	s.Stop()
	assert.True(t, cancelled.Load())
}
