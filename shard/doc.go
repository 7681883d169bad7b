// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package shard implements the per-core runtime adapter: a pinned,
// single-goroutine task queue (Shard), a bounded-admission acceptor
// (Acceptor) built on top of it, the executor handle (Executor) that
// satisfies an HTTP/2 engine's fire-and-forget spawn contract, and the
// Supervisor that starts one Shard per physical CPU and joins them on
// shutdown.
//
// No type in this package shares mutable state across shards. The only
// cross-goroutine primitive is the shutdown channel; everything else -
// the admission counter, the task queue, the accept loop - is touched
// by exactly one goroutine per Shard.
package shard
