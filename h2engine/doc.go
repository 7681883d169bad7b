// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package h2engine implements gmf.Engine on top of golang.org/x/net/http2.
// It frames gRPC's length-prefixed message wire format itself; decoding
// a message's bytes into (or out of) any particular serialization -
// protobuf or otherwise - remains the gmf.ServiceRef implementor's
// concern.
package h2engine
