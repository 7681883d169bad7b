package shard

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWrappedStream_SniffPreface_complete(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte(http2ClientPreface))
	}()

	ws := WrapStream(server)
	complete, err := ws.SniffPreface(5 * time.Second)
	require.NoError(t, err)
	require.True(t, complete)
}

func TestWrappedStream_SniffPreface_replaysIntoRead(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte(http2ClientPreface + "extra-bytes")
	go func() {
		_, _ = client.Write(payload)
	}()

	ws := WrapStream(server)
	complete, err := ws.SniffPreface(5 * time.Second)
	require.NoError(t, err)
	require.True(t, complete)

	rest := make([]byte, len(payload))
	_, err = io.ReadFull(ws, rest)
	require.NoError(t, err)
	require.Equal(t, string(payload), string(rest))
}

func TestWrappedStream_SniffPreface_wrongPreface(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	}()

	ws := WrapStream(server)
	complete, err := ws.SniffPreface(5 * time.Second)
	require.NoError(t, err)
	require.False(t, complete)
}

func TestWrappedStream_SniffPreface_incompleteOnClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("PRI *"))
		_ = client.Close()
	}()

	ws := WrapStream(server)
	complete, err := ws.SniffPreface(5 * time.Second)
	require.NoError(t, err)
	require.False(t, complete)
}

func TestWrappedStream_SniffPreface_timeoutIsBenign(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ws := WrapStream(server)
	complete, err := ws.SniffPreface(20 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, complete)
}

func TestIsBenignReadError(t *testing.T) {
	require.True(t, isBenignReadError(io.EOF))
	require.False(t, isBenignReadError(io.ErrUnexpectedEOF))
}
