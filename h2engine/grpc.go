package h2engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// grpcMaxMessageSize bounds a single decoded gRPC message. 4 MiB
// matches grpc-go's DefaultMaxRecvMsgSize so a client tuned against
// either stack behaves the same against this one.
const grpcMaxMessageSize = 4 << 20

// errGRPCFrameTooLarge is returned by readGRPCMessage when a frame's
// declared length exceeds grpcMaxMessageSize.
var errGRPCFrameTooLarge = errors.New("h2engine: grpc message exceeds maximum frame size")

// readGRPCMessage reads one length-prefixed gRPC message from r: a
// 1-byte compressed-flag (always 0; this engine does not implement
// per-message compression) followed by a 4-byte big-endian length and
// that many bytes of message payload.
func readGRPCMessage(r io.Reader) ([]byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != 0 {
		return nil, fmt.Errorf("h2engine: compressed grpc messages are not supported")
	}
	size := binary.BigEndian.Uint32(hdr[1:])
	if size > grpcMaxMessageSize {
		return nil, errGRPCFrameTooLarge
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// writeGRPCMessage writes body as one uncompressed length-prefixed
// gRPC message frame to w.
func writeGRPCMessage(w io.Writer, body []byte) error {
	var hdr [5]byte
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
