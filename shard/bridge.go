package shard

import (
	"errors"
	"io"
	"net"
	"time"
)

// http2ClientPreface is the fixed byte sequence every HTTP/2 client
// sends before its first frame (RFC 7540 §3.5). gRPC clients speak
// HTTP/2 "prior knowledge" cleartext and send it unconditionally.
const http2ClientPreface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// WrappedStream is a thin, exclusive-ownership wrapper over an
// accepted net.Conn. It holds no state beyond the inner conn and
// whatever bytes it peeked off the wire before it was done sniffing
// the connection preface.
type WrappedStream struct {
	net.Conn
	peek []byte
}

// WrapStream takes ownership of conn.
func WrapStream(conn net.Conn) *WrappedStream { return &WrappedStream{Conn: conn} }

// Read satisfies net.Conn. Any bytes SniffPreface already consumed off
// the wire are replayed first, so callers downstream (the HTTP/2
// engine) never observe that a peek happened.
func (w *WrappedStream) Read(p []byte) (int, error) {
	if len(w.peek) > 0 {
		n := copy(p, w.peek)
		w.peek = w.peek[n:]
		return n, nil
	}
	return w.Conn.Read(p)
}

// SniffPreface peeks bytes off the wire looking for the fixed HTTP/2
// client preface, rendered against Go's blocking net.Conn.Read instead
// of a cx-driven Poll:
//
//  1. obtain the uninitialized tail of a reusable buffer;
//  2. invoke the inner Read with that tail;
//  3. on success, advance the buffer by exactly the bytes returned;
//  4. on a hard error, propagate it with its classification intact;
//  5. on a benign non-progress condition (timeout, or EOF before the
//     full preface arrived), report "incomplete", never an error.
//
// A zero-byte read is legal and simply means "no bytes yet"; it is not
// treated as end-of-stream. deadline bounds the whole sniff; a client
// that never completes the preface within it is reported identically
// to one that closed early.
func (w *WrappedStream) SniffPreface(deadline time.Duration) (complete bool, err error) {
	want := []byte(http2ClientPreface)
	buf := make([]byte, 0, len(want))

	if deadline > 0 {
		_ = w.Conn.SetReadDeadline(time.Now().Add(deadline))
		defer w.Conn.SetReadDeadline(time.Time{})
	}

	for len(buf) < len(want) {
		tail := buf[len(buf):cap(buf)]
		n, rerr := w.Conn.Read(tail)
		if n > 0 {
			buf = buf[:len(buf)+n]
		}
		if rerr != nil {
			w.peek = buf
			if isBenignReadError(rerr) {
				return false, nil
			}
			return false, rerr
		}
	}

	w.peek = buf
	return string(buf) == http2ClientPreface, nil
}

// isBenignReadError reports whether err represents a non-fatal
// incomplete read: end of stream, or a read-deadline timeout.
func isBenignReadError(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
