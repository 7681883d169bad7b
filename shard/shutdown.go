package shard

import "sync"

// ShutdownChannel is a single-producer, cross-thread cooperative
// termination signal. Go's idiomatic rendering of "signal once, observe
// everywhere" is a closed channel, so Terminate closes it instead of
// sending on it, and it is safe to call Terminate from as many
// goroutines as like - only the first one has any effect.
type ShutdownChannel struct {
	once sync.Once
	done chan struct{}
	log  Logger
}

// NewShutdownChannel returns a ShutdownChannel ready to use.
func NewShutdownChannel(log Logger) *ShutdownChannel {
	if log == nil {
		log = DefaultLogger()
	}
	return &ShutdownChannel{done: make(chan struct{}), log: log}
}

// Terminate signals shutdown. It is idempotent: every call after the
// first is a no-op, logged at warning level so a caller that expected
// exclusive ownership of shutdown notices a second caller exists.
func (c *ShutdownChannel) Terminate() {
	first := false
	c.once.Do(func() {
		first = true
		close(c.done)
	})
	if !first {
		c.log.Warning().Log("shutdown: terminate called again after shutdown already signaled")
	}
}

// Done returns a channel closed once Terminate has been called.
func (c *ShutdownChannel) Done() <-chan struct{} { return c.done }
