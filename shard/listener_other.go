//go:build !linux && !darwin

package shard

import (
	"context"
	"net"
)

// bindListener on platforms without SO_REUSEPORT support falls back to
// a plain bind. Neither Acceptor.Run nor Supervisor logs that
// multi-shard port sharing degraded to a single listener on these
// platforms - see SPEC_FULL.md's Open Question resolution for OQ-2.
func bindListener(addr string, reusePort bool) (net.Listener, error) {
	_ = reusePort
	return (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
}
