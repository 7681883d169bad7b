// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command helloworld runs a minimal Greeter service on top of gmf, one
// shard per CPU, to demonstrate wiring a gmf.ServiceRef through
// gmf.Server end to end. It speaks the gRPC wire format but - since
// protobuf codegen is out of this module's scope - encodes HelloReply
// by hand instead of via generated message types.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeycumines/gmf"
	"github.com/joeycumines/gmf/h2engine"
	"github.com/joeycumines/gmf/shard"
)

// greeter implements the single "/helloworld.Greeter/SayHello" method
// by hand-decoding a HelloRequest's one string field (protobuf field 1,
// wire type 2) and hand-encoding a HelloReply the same way, so the
// example has no generated-code dependency.
type greeter struct{}

func (greeter) Call(_ context.Context, req *gmf.Request) (*gmf.Response, error) {
	if req.Method != "/helloworld.Greeter/SayHello" {
		return nil, fmt.Errorf("helloworld: unknown method %q", req.Method)
	}
	name := decodeStringField(req.Body, 1)
	if name == "" {
		name = "world"
	}
	reply := encodeStringField(1, "Hello "+name+"!")
	return &gmf.Response{Body: reply}, nil
}

func main() {
	addr := "0.0.0.0:50051"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	log := shard.DefaultLogger()

	srv, err := gmf.New(
		greeter{},
		gmf.WithEngine(h2engine.New()),
		gmf.WithMaxConnections(1024),
		gmf.WithReusePort(true),
	)
	if err != nil {
		log.Err().Err(err).Log("helloworld: failed to build server")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Log("helloworld: received shutdown signal")
		srv.Terminate()
	}()

	log.Info().Str("addr", addr).Log("helloworld: serving")
	if err := srv.Serve(ctx, addr); err != nil {
		log.Err().Err(err).Log("helloworld: server exited with error")
		os.Exit(1)
	}
}

// decodeStringField extracts the first length-delimited (wire type 2)
// field with the given field number from a minimal protobuf message,
// returning "" if absent or malformed. It exists purely so this example
// doesn't need a generated HelloRequest type.
func decodeStringField(msg []byte, field int) string {
	for len(msg) > 0 {
		tag, n := uvarint(msg)
		if n <= 0 {
			return ""
		}
		msg = msg[n:]
		fieldNum := tag >> 3
		wireType := tag & 0x7
		switch wireType {
		case 0: // varint
			_, n := uvarint(msg)
			if n <= 0 {
				return ""
			}
			msg = msg[n:]
		case 2: // length-delimited
			size, n := uvarint(msg)
			if n <= 0 || uint64(len(msg)-n) < size {
				return ""
			}
			msg = msg[n:]
			if int(fieldNum) == field {
				return string(msg[:size])
			}
			msg = msg[size:]
		default:
			return ""
		}
	}
	return ""
}

// encodeStringField encodes value as a single length-delimited
// protobuf field, the mirror of decodeStringField.
func encodeStringField(field int, value string) []byte {
	var out []byte
	out = appendUvarint(out, uint64(field<<3|2))
	out = appendUvarint(out, uint64(len(value)))
	out = append(out, value...)
	return out
}

func uvarint(buf []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, b := range buf {
		if b < 0x80 {
			return x | uint64(b)<<s, i + 1
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, 0
}

func appendUvarint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

