package shard

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// SupervisorConfig configures the Supervisor. Shards defaults to
// runtime.NumCPU() when left at zero - an approximation of "one shard
// per physical CPU", since Go's runtime does not expose physical core
// counts separately from logical ones (SPEC_FULL.md's Open Question
// resolution for OQ-4).
type SupervisorConfig struct {
	// Addr is the address every shard's Acceptor binds to.
	Addr string

	// Shards overrides the shard count. Zero means runtime.NumCPU().
	Shards int

	// MaxConnectionsPerShard bounds concurrent connections on each shard
	// independently; the effective server-wide ceiling is this times the
	// shard count.
	MaxConnectionsPerShard int

	// ReusePort enables SO_REUSEPORT binding so every shard's listener
	// shares the port instead of contending for one accept loop.
	ReusePort bool

	// PrefaceSniffTimeout is forwarded to every shard's Acceptor.
	PrefaceSniffTimeout time.Duration

	// Handler is the connection handler every shard's Acceptor invokes.
	Handler ConnHandler

	// Logger overrides the default logger for every shard this
	// Supervisor creates.
	Logger Logger
}

// Supervisor enumerates CPUs, pins one Shard per CPU, and joins them.
// runtime.LockOSThread plus pinCurrentThread gives each Shard a fixed
// home CPU for its whole lifetime.
type Supervisor struct {
	cfg       SupervisorConfig
	shards    []*Shard
	acceptors []*Acceptor
}

// NewSupervisor validates cfg and constructs the Shard/Acceptor pairs
// it will run, without starting anything yet.
func NewSupervisor(cfg SupervisorConfig) (*Supervisor, error) {
	if cfg.MaxConnectionsPerShard <= 0 {
		return nil, fmt.Errorf("%w: max_connections_per_shard must be positive, got %d", ErrConfiguration, cfg.MaxConnectionsPerShard)
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("%w: handler is required", ErrConfiguration)
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return nil, fmt.Errorf("%w: invalid address %q: %v", ErrConfiguration, cfg.Addr, err)
	}
	n := cfg.Shards
	if n <= 0 {
		n = runtime.NumCPU()
	}

	sup := &Supervisor{cfg: cfg, shards: make([]*Shard, n), acceptors: make([]*Acceptor, n)}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("gmf_server%d", i)
		s := New(name, cfg.Logger)
		s.queue.name = fmt.Sprintf("rpc_server_tq%d", i)
		acc, err := NewAcceptor(s, AcceptorConfig{
			Addr:                cfg.Addr,
			MaxConnections:      cfg.MaxConnectionsPerShard,
			ReusePort:           cfg.ReusePort,
			PrefaceSniffTimeout: cfg.PrefaceSniffTimeout,
			Handler:             cfg.Handler,
		})
		if err != nil {
			return nil, fmt.Errorf("supervisor: shard %q: %w", name, err)
		}
		sup.shards[i] = s
		sup.acceptors[i] = acc
	}
	return sup, nil
}

// Shards returns the Supervisor's Shards, in CPU-index order. Exposed
// for tests and for callers that want per-shard observability (e.g.
// reading Acceptor.State by walking alongside Run).
func (sup *Supervisor) Shards() []*Shard {
	out := make([]*Shard, len(sup.shards))
	copy(out, sup.shards)
	return out
}

// Acceptors returns the Supervisor's Acceptors, in CPU-index order and
// in one-to-one correspondence with Shards.
func (sup *Supervisor) Acceptors() []*Acceptor {
	out := make([]*Acceptor, len(sup.acceptors))
	copy(out, sup.acceptors)
	return out
}

// Run starts every shard, pinned to its own CPU, and blocks until ctx
// is cancelled and every shard has drained - or until one shard fails
// fatally, in which case Run cancels the rest and returns that error
// first, matching errgroup's "first error wins" join semantics.
func (sup *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range sup.shards {
		i, s, acc := i, s, sup.acceptors[i]
		g.Go(func() error {
			return sup.runPinned(gctx, i, s, acc)
		})
	}

	return g.Wait()
}

// runPinned locks the calling goroutine to its own OS thread, pins that
// thread to CPU i, then runs s's Acceptor and dispatch loop together
// until gctx is cancelled.
func (sup *Supervisor) runPinned(gctx context.Context, i int, s *Shard, acc *Acceptor) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := pinCurrentThread(i); err != nil {
		s.log.Warning().
			Str("shard", s.Name).
			Int("cpu", i).
			Err(err).
			Log("supervisor: failed to pin shard to CPU, continuing unpinned")
	}

	acceptorErr := make(chan error, 1)
	go func() { acceptorErr <- acc.Run(gctx) }()

	dispatchErr := s.Run(gctx)

	if err := <-acceptorErr; err != nil && gctx.Err() == nil {
		return fmt.Errorf("supervisor: shard %q: %w", s.Name, err)
	}
	if dispatchErr != nil && gctx.Err() == nil {
		return fmt.Errorf("supervisor: shard %q: %w", s.Name, dispatchErr)
	}
	return nil
}
