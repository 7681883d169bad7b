// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package gmf implements a thread-per-core gRPC-over-HTTP/2 server
// substrate: one pinned, single-task-queue scheduler per physical CPU,
// each accepting and driving its own connections to completion without
// migrating work to any other core.
//
// gmf itself is the runtime adapter only: the per-core executor, the
// bounded-admission acceptor loop, the I/O bridge, and the supervisor
// that owns graceful shutdown. The HTTP/2 wire protocol is provided by
// the h2engine subpackage (or any type satisfying the Engine
// interface); the gRPC codec and the service implementation are the
// caller's concern.
package gmf
