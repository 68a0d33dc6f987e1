package framed

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthPrefixedParseNeedsMoreBytes(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 5, 'h', 'e'})

	codec := LengthPrefixedCodec{}
	frame, ok, err := codec.Parse(&buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, frame)
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	codec := LengthPrefixedCodec{}
	require.NoError(t, codec.Write(&buf, []byte("hello")))

	frame, ok, err := codec.Parse(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), frame)
}

func TestLengthPrefixedRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	codec := LengthPrefixedCodec{}
	_, _, err := codec.Parse(&buf)
	assert.Error(t, err)
}

func TestConnReadFrameOverNetConn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverConn := New[net.Conn, []byte](server, server.RemoteAddr(), 1, LengthPrefixedCodec{})
	clientConn := New[net.Conn, []byte](client, client.RemoteAddr(), 2, LengthPrefixedCodec{})

	go func() {
		_ = clientConn.WriteFrame([]byte("ping"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, ok, err := serverConn.ReadFrame(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("ping"), frame)
}
