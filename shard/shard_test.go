package shard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShard_RunInline_executesInOrder(t *testing.T) {
	s := New("test0", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	var order []int
	results := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, s.runInline(func() {
			order = append(order, i)
			results <- struct{}{}
		}))
	}
	for i := 0; i < 3; i++ {
		<-results
	}
	require.Equal(t, []int{0, 1, 2}, order)

	cancel()
	<-done
}

func TestShard_Submit_detachesTask(t *testing.T) {
	s := New("test1", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	var ran atomic.Bool
	taskDone := make(chan struct{})
	require.NoError(t, s.submit(ctx, func(ctx context.Context) {
		ran.Store(true)
		close(taskDone)
	}))

	select {
	case <-taskDone:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	require.True(t, ran.Load())

	cancel()
	<-done
}

func TestShard_Run_waitsForOutstandingTasks(t *testing.T) {
	s := New("test2", nil)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	require.NoError(t, s.submit(ctx, func(ctx context.Context) {
		close(started)
		<-release
		finished.Store(true)
	}))
	<-started

	cancel()
	close(release)
	<-done

	require.True(t, finished.Load(), "Run must not return until outstanding tasks finish")
}

func TestShard_Submit_afterClosed(t *testing.T) {
	s := New("test3", nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	cancel()
	<-done

	err := s.submit(context.Background(), func(context.Context) {})
	require.ErrorIs(t, err, ErrSpawn)
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateBound:      "bound",
		StateAccepting:  "accepting",
		StateServing:    "serving",
		StateDraining:   "draining",
		StateTerminated: "terminated",
		State(99):       "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}
