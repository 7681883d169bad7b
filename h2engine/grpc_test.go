package h2engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadGRPCMessage_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("hello world")
	require.NoError(t, writeGRPCMessage(&buf, body))

	got, err := readGRPCMessage(&buf)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestWriteReadGRPCMessage_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGRPCMessage(&buf, nil))

	got, err := readGRPCMessage(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadGRPCMessage_rejectsCompressedFlag(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 0, 0, 0, 0})
	_, err := readGRPCMessage(buf)
	require.Error(t, err)
}

func TestReadGRPCMessage_rejectsOversizedFrame(t *testing.T) {
	hdr := []byte{0, 0xFF, 0xFF, 0xFF, 0xFF}
	buf := bytes.NewBuffer(hdr)
	_, err := readGRPCMessage(buf)
	require.ErrorIs(t, err, errGRPCFrameTooLarge)
}

func TestReadGRPCMessage_truncatedHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0})
	_, err := readGRPCMessage(buf)
	require.Error(t, err)
}
