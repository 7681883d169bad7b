package shard

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ConnHandler drives one accepted, preface-sniffed connection to
// completion. It is invoked on its own goroutine, tracked by the owning
// Shard's wait group, with exec bound to that same Shard - so a handler
// that itself needs to fan out work (e.g. one goroutine per HTTP/2
// stream) stays on the right core by spawning through exec rather than
// a bare "go".
type ConnHandler func(ctx context.Context, stream *WrappedStream, exec Executor) error

// AcceptorConfig configures an Acceptor. MaxConnections and Handler are
// required; the rest have workable zero values.
type AcceptorConfig struct {
	// Addr is the TCP address to listen on, e.g. ":8980".
	Addr string

	// MaxConnections bounds concurrent live connections on this shard.
	// Zero is rejected with ErrConfiguration rather than treated as
	// "unbounded admission": defaulting it silently would hide a
	// caller's mistake.
	MaxConnections int

	// ReusePort binds with SO_REUSEPORT when the platform supports it,
	// so every shard can listen on the same Addr independently instead
	// of funneling through one shared listener. If the platform does
	// not support it, bindListener falls back to a plain bind; no
	// warning is logged for that fallback.
	ReusePort bool

	// PrefaceSniffTimeout bounds how long SniffPreface may block before
	// a connection is treated as incomplete and dropped. Zero disables
	// the deadline (sniff blocks as long as the inner Read allows).
	PrefaceSniffTimeout time.Duration

	// Handler is invoked once per admitted, preface-complete connection.
	Handler ConnHandler
}

// Acceptor is a bounded-admission acceptor loop: one goroutine per
// Shard reading from a single net.Listener. The admission counter
// (available) is mutated exclusively via the owning Shard's inline
// channel, so it never needs a lock even though the goroutine tracking
// a released connection is not the goroutine that runs the accept
// loop.
type Acceptor struct {
	shard *Shard
	cfg   AcceptorConfig
	log   Logger

	// listener is only ever touched by the goroutine running Run;
	// listenerAddr publishes its address for any goroutine to read
	// without racing that ownership.
	listener     net.Listener
	listenerAddr atomic.Value // net.Addr

	// available starts at cfg.MaxConnections and is only ever touched
	// from within a runInline closure.
	available int

	state atomic.Int32
}

// NewAcceptor validates cfg and returns an Acceptor bound to shard. It
// does not bind a listener; that happens in Run.
func NewAcceptor(s *Shard, cfg AcceptorConfig) (*Acceptor, error) {
	if cfg.MaxConnections <= 0 {
		return nil, fmt.Errorf("%w: max_connections must be positive, got %d", ErrConfiguration, cfg.MaxConnections)
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("%w: handler is required", ErrConfiguration)
	}
	acc := &Acceptor{
		shard:     s,
		cfg:       cfg,
		log:       s.log,
		available: cfg.MaxConnections,
	}
	acc.state.Store(int32(StateIdle))
	return acc, nil
}

// Addr returns the Acceptor's bound listener address, or nil before
// State has reached at least StateBound.
func (a *Acceptor) Addr() net.Addr {
	addr, _ := a.listenerAddr.Load().(net.Addr)
	return addr
}

// State returns the Acceptor's current lifecycle state.
func (a *Acceptor) State() State {
	return State(a.state.Load())
}

func (a *Acceptor) setState(s State) {
	a.state.Store(int32(s))
}

// Run binds cfg.Addr and accepts connections until ctx is cancelled or
// the listener fails fatally. It returns as soon as the accept loop
// stops; spawned connection handlers are tracked by the Shard, so it is
// the Shard's Run that waits out a graceful drain.
func (a *Acceptor) Run(ctx context.Context) error {
	a.setState(StateIdle)

	ln, err := bindListener(a.cfg.Addr, a.cfg.ReusePort)
	if err != nil {
		a.setState(StateTerminated)
		return fmt.Errorf("%w: %v", ErrBind, err)
	}
	a.listener = ln
	a.listenerAddr.Store(ln.Addr())
	a.setState(StateBound)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.setState(StateDraining)
			_ = ln.Close()
		case <-done:
		}
	}()

	a.setState(StateAccepting)
	a.log.Info().
		Str("shard", a.shard.Name).
		Str("addr", ln.Addr().String()).
		Int("max_connections", a.cfg.MaxConnections).
		Log("acceptor: listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				a.setState(StateTerminated)
				return ctx.Err()
			}
			if isTemporary(err) {
				a.log.Warning().Err(err).Log("acceptor: transient accept error, continuing")
				continue
			}
			a.setState(StateTerminated)
			return fmt.Errorf("acceptor: fatal accept error: %w", err)
		}
		a.admit(ctx, conn)
	}
}

// admit hands an accepted connection to the shard's dispatch goroutine
// for the admission-counter check, so that check and any resulting
// decrement happen without a lock. A rejected connection is closed
// immediately under a default immediate-rejection policy - there is no
// queueing of connections waiting for a slot to free up.
func (a *Acceptor) admit(ctx context.Context, conn net.Conn) {
	err := a.shard.runInline(func() {
		if a.available <= 0 {
			a.log.Err().
				Str("peer", safeRemoteAddr(conn)).
				Log("acceptor: rejecting connection, no admission slot available")
			_ = conn.Close()
			return
		}
		a.available--
		a.setState(StateServing)
		a.log.Debug().
			Int("available", a.available).
			Log("acceptor: acquired connection semaphore, number of available connection permits")

		stream := WrapStream(conn)
		a.shard.spawn(ctx, func(ctx context.Context) {
			a.drive(ctx, stream)
		})
	})
	if err != nil {
		// The shard stopped accepting inline work while this connection
		// was in flight; nothing owns it yet, so close it ourselves.
		_ = conn.Close()
	}
}

// drive sniffs the connection preface and, if the client followed
// through, invokes cfg.Handler. Either way it releases the admission
// slot on every exit path, via another inline closure.
func (a *Acceptor) drive(ctx context.Context, stream *WrappedStream) {
	defer a.release()

	complete, err := stream.SniffPreface(a.cfg.PrefaceSniffTimeout)
	if err != nil {
		a.log.Debug().Err(err).Log("acceptor: connection closed before preface completed")
		_ = stream.Close()
		return
	}
	if !complete {
		a.log.Debug().Log("acceptor: incomplete preface, dropping connection")
		_ = stream.Close()
		return
	}

	if err := a.cfg.Handler(ctx, stream, a.shard.Executor()); err != nil {
		a.log.Warning().Err(err).Log("acceptor: connection handler returned error")
	}
}

// release returns one admission slot, again exclusively via the inline
// channel. It tolerates the shard already having stopped accepting
// inline work - at that point nothing is reading the counter anymore
// anyway.
func (a *Acceptor) release() {
	_ = a.shard.runInline(func() {
		a.available++
		if a.available >= a.cfg.MaxConnections {
			a.setState(StateAccepting)
		}
	})
}

func safeRemoteAddr(conn net.Conn) string {
	if conn == nil {
		return "<nil>"
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "<unknown>"
}

// isTemporary reports whether err represents a transient accept-loop
// condition (e.g. a transient resource exhaustion) worth retrying,
// rather than a fatal listener failure.
func isTemporary(err error) bool {
	type temporary interface{ Temporary() bool }
	if te, ok := err.(temporary); ok {
		return te.Temporary()
	}
	return false
}
