//go:build linux || darwin

package shard

import (
	"context"
	"net"
	"syscall"
)

// bindListener binds addr, optionally with SO_REUSEPORT so that every
// shard can independently listen on the same address and let the
// kernel load-balance accepted connections across them.
func bindListener(addr string, reusePort bool) (net.Listener, error) {
	lc := net.ListenConfig{}
	if reusePort {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var ctlErr error
			err := c.Control(func(fd uintptr) {
				ctlErr = setReuseAddrAndPort(fd)
			})
			if err != nil {
				return err
			}
			return ctlErr
		}
	}
	return lc.Listen(context.Background(), "tcp", addr)
}
