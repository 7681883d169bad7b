package shard

import "errors"

// Standard errors returned by this package. Each corresponds to one of
// the error kinds this runtime distinguishes.
var (
	// ErrConfiguration is returned at Serve entry for an invalid
	// configuration, e.g. MaxConnections == 0 or an unparsable address.
	ErrConfiguration = errors.New("shard: invalid configuration")

	// ErrBind is returned when the OS refuses a listening socket.
	ErrBind = errors.New("shard: failed to bind listener")

	// ErrAdmissionRejected is never returned to a caller; it exists so
	// log sites and tests can match on it via errors.Is.
	ErrAdmissionRejected = errors.New("shard: connection rejected, no admission slot available")

	// ErrSpawn indicates the shard's task queue refused a new task,
	// because the shard is draining or terminated.
	ErrSpawn = errors.New("shard: task queue closed, refusing spawn")

	// ErrShardTerminated is returned by Shard methods called after Run
	// has returned.
	ErrShardTerminated = errors.New("shard: already terminated")
)
