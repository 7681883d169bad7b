package h2engine

import "time"

// engineOptions holds configuration gathered from Option values.
type engineOptions struct {
	maxReadFrameSize     uint32
	maxConcurrentStreams uint32
	idleTimeout          time.Duration
}

// Option configures an Engine, mirroring eventloop's LoopOption pattern.
type Option interface {
	applyEngine(*engineOptions)
}

type engineOptionFunc struct {
	fn func(*engineOptions)
}

func (o *engineOptionFunc) applyEngine(opts *engineOptions) { o.fn(opts) }

// WithMaxReadFrameSize overrides the HTTP/2 server's max read frame
// size. Zero leaves golang.org/x/net/http2's own default in effect.
func WithMaxReadFrameSize(n uint32) Option {
	return &engineOptionFunc{func(opts *engineOptions) { opts.maxReadFrameSize = n }}
}

// WithMaxConcurrentStreams overrides the per-connection concurrent
// stream limit advertised to clients. Zero leaves the library default.
func WithMaxConcurrentStreams(n uint32) Option {
	return &engineOptionFunc{func(opts *engineOptions) { opts.maxConcurrentStreams = n }}
}

// WithIdleTimeout sets how long a connection may sit with no active
// streams before the engine closes it. Zero disables the idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return &engineOptionFunc{func(opts *engineOptions) { opts.idleTimeout = d }}
}

func resolveEngineOptions(opts []Option) *engineOptions {
	cfg := &engineOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyEngine(cfg)
	}
	return cfg
}
