package shard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSupervisor_rejectsBadConfig(t *testing.T) {
	_, err := NewSupervisor(SupervisorConfig{MaxConnectionsPerShard: 0, Handler: func(context.Context, *WrappedStream, Executor) error { return nil }})
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewSupervisor(SupervisorConfig{MaxConnectionsPerShard: 1})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSupervisor_runsOneShardPerConfiguredCount(t *testing.T) {
	sup, err := NewSupervisor(SupervisorConfig{
		Addr:                   "127.0.0.1:0",
		Shards:                 2,
		MaxConnectionsPerShard: 4,
		Handler:                func(context.Context, *WrappedStream, Executor) error { return nil },
	})
	require.NoError(t, err)
	require.Len(t, sup.Shards(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx) }()

	// Give both shards a moment to bind before tearing down.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		require.NoError(t, err, "a clean, context-cancelled shutdown is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor never stopped")
	}
}
