package shard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutor_Spawn_waitReturnsTaskError(t *testing.T) {
	s := New("exec0", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	exec := s.Executor()
	sentinel := errors.New("boom")
	task, err := exec.Spawn(ctx, func(context.Context) error { return sentinel })
	require.NoError(t, err)
	require.ErrorIs(t, task.Wait(), sentinel)

	cancel()
	<-done
}

func TestExecutor_Spawn_refusedAfterDraining(t *testing.T) {
	s := New("exec1", nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	cancel()
	<-done

	exec := s.Executor()
	_, err := exec.Spawn(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrSpawn)
}

func TestExecutor_Execute_detachesAndRuns(t *testing.T) {
	s := New("exec2", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	exec := s.Executor()
	ran := make(chan struct{})
	exec.Execute(ctx, func(context.Context) error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("Execute never ran the task")
	}

	cancel()
	<-done
}

func TestTaskQueueHandle_Name(t *testing.T) {
	s := New("named_queue", nil)
	require.Equal(t, "named_queue_tq", s.Executor().Queue().Name())
}
