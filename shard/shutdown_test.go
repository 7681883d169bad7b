package shard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShutdownChannel_TerminateClosesDone(t *testing.T) {
	c := NewShutdownChannel(nil)
	select {
	case <-c.Done():
		t.Fatal("Done should not be closed before Terminate")
	default:
	}

	c.Terminate()
	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed after Terminate")
	}
}

func TestShutdownChannel_TerminateIsIdempotent(t *testing.T) {
	c := NewShutdownChannel(nil)
	require.NotPanics(t, func() {
		c.Terminate()
		c.Terminate()
		c.Terminate()
	})
}

func TestShutdownChannel_ConcurrentTerminate(t *testing.T) {
	c := NewShutdownChannel(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Terminate()
		}()
	}
	wg.Wait()
	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed")
	}
}
