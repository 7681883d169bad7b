package gmf

import (
	"time"

	"github.com/joeycumines/gmf/shard"
)

// serverOptions holds configuration gathered from Option values.
type serverOptions struct {
	engine              Engine
	shards              int
	maxConnections      int
	reusePort           bool
	prefaceSniffTimeout time.Duration
	logger              shard.Logger
}

// Option configures a Server, mirroring eventloop's LoopOption pattern.
type Option interface {
	applyServer(*serverOptions) error
}

type serverOptionFunc struct {
	fn func(*serverOptions) error
}

func (o *serverOptionFunc) applyServer(opts *serverOptions) error { return o.fn(opts) }

// WithEngine selects the HTTP/2 engine driving every admitted
// connection. Required; New returns ErrConfiguration without one.
func WithEngine(engine Engine) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.engine = engine
		return nil
	}}
}

// WithShards overrides the shard count. Zero or unset means
// runtime.NumCPU(), approximating "one shard per physical CPU".
func WithShards(n int) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.shards = n
		return nil
	}}
}

// WithMaxConnections bounds concurrent connections on each shard
// independently; the server-wide ceiling is this times the shard count.
func WithMaxConnections(n int) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.maxConnections = n
		return nil
	}}
}

// WithReusePort enables SO_REUSEPORT binding so every shard listens on
// the same address independently, letting the kernel load-balance
// accepted connections across shards instead of funneling them through
// one shared accept loop.
func WithReusePort(enabled bool) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.reusePort = enabled
		return nil
	}}
}

// WithPrefaceSniffTimeout bounds how long the I/O bridge waits for a
// connection to finish sending its HTTP/2 client preface before it is
// dropped as incomplete. Zero (the default) disables the deadline.
func WithPrefaceSniffTimeout(d time.Duration) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.prefaceSniffTimeout = d
		return nil
	}}
}

// WithLogger overrides the structured logger used by every shard this
// Server creates. The default writes JSON to stderr at the level named
// by the LOG_LEVEL environment variable, info by default.
func WithLogger(log shard.Logger) Option {
	return &serverOptionFunc{func(opts *serverOptions) error {
		opts.logger = log
		return nil
	}}
}

func resolveServerOptions(opts []Option) (*serverOptions, error) {
	cfg := &serverOptions{
		maxConnections: 1024,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyServer(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
