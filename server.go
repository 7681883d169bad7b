package gmf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/joeycumines/gmf/shard"
)

// Server is the top-level builder: it owns one ServiceRef, wires a
// shard.Supervisor to drive it across every shard, and exposes
// cooperative shutdown via a shard.ShutdownChannel.
type Server struct {
	svc      ServiceRef
	opts     *serverOptions
	shutdown *shard.ShutdownChannel

	supervisor atomic.Pointer[shard.Supervisor]
}

// New constructs a Server for svc. It returns ErrConfiguration if no
// Engine was supplied via WithEngine.
func New(svc ServiceRef, opts ...Option) (*Server, error) {
	cfg, err := resolveServerOptions(opts)
	if err != nil {
		return nil, err
	}
	if cfg.engine == nil {
		return nil, fmt.Errorf("%w: an Engine is required, see WithEngine", shard.ErrConfiguration)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: svc must not be nil", shard.ErrConfiguration)
	}

	return &Server{
		svc:      svc,
		opts:     cfg,
		shutdown: shard.NewShutdownChannel(cfg.logger),
	}, nil
}

// Serve binds addr on every shard and blocks until Terminate is called
// or ctx is cancelled, then waits for every in-flight connection to
// drain before returning. A second concurrent call to Serve on the same
// Server is a programming error; Server is single-use.
func (s *Server) Serve(ctx context.Context, addr string) error {
	handler := func(ctx context.Context, stream *shard.WrappedStream, exec shard.Executor) error {
		return s.opts.engine.ServeConn(ctx, stream, s.svc, exec)
	}

	sup, err := shard.NewSupervisor(shard.SupervisorConfig{
		Addr:                   addr,
		Shards:                 s.opts.shards,
		MaxConnectionsPerShard: s.opts.maxConnections,
		ReusePort:              s.opts.reusePort,
		PrefaceSniffTimeout:    s.opts.prefaceSniffTimeout,
		Handler:                handler,
		Logger:                 s.opts.logger,
	})
	if err != nil {
		return err
	}
	s.supervisor.Store(sup)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-s.shutdown.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	err = sup.Run(runCtx)
	if errors.Is(err, context.Canceled) && (errors.Is(ctx.Err(), context.Canceled) || isShutdownRequested(s.shutdown)) {
		return nil
	}
	return err
}

// Terminate signals every shard to stop accepting new work and begin
// draining. It is idempotent and safe to call before Serve, from
// Serve's own connection handlers, or from an entirely separate
// goroutine (e.g. a signal handler).
func (s *Server) Terminate() { s.shutdown.Terminate() }

// Done returns a channel closed once Terminate has been called.
func (s *Server) Done() <-chan struct{} { return s.shutdown.Done() }

// Shards exposes the running Supervisor's Shards for observability.
// It returns nil before Serve has been called.
func (s *Server) Shards() []*shard.Shard {
	sup := s.supervisor.Load()
	if sup == nil {
		return nil
	}
	return sup.Shards()
}

// Addrs returns the bound listen address of each shard's Acceptor, in
// the same order as Shards. An entry is nil until that shard's
// Acceptor has finished binding. It returns nil before Serve has been
// called.
func (s *Server) Addrs() []net.Addr {
	sup := s.supervisor.Load()
	if sup == nil {
		return nil
	}
	accs := sup.Acceptors()
	out := make([]net.Addr, len(accs))
	for i, acc := range accs {
		out[i] = acc.Addr()
	}
	return out
}

func isShutdownRequested(c *shard.ShutdownChannel) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}
