//go:build linux

package shard

import "golang.org/x/sys/unix"

// pinCurrentThread restricts the calling OS thread's CPU affinity mask
// to exactly cpu. The caller must already hold runtime.LockOSThread,
// otherwise the Go scheduler is free to run the calling goroutine on a
// different OS thread than the one just pinned.
func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
