// Package framed implements a Framed I/O capability: a
// protocol-agnostic parse/read/write contract over any stream, so a
// processor that speaks a length-delimited or otherwise framed
// protocol never re-derives its own buffering.
package framed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
)

// Codec knows how to recognize one frame of type F at the head of buf
// and how to serialize one to w. Parse must not block and must not
// consume buf unless it returns a complete frame; returning (zero,
// false, nil) means "need more bytes".
type Codec[F any] interface {
	Parse(buf *bytes.Buffer) (frame F, ok bool, err error)
	Write(w io.Writer, frame F) error
}

// Conn is a `{ stream, peer_addr, read_buffer, socket_id }` type:
// a stream of type S framed by codec Codec[F].
type Conn[S io.ReadWriteCloser, F any] struct {
	Stream   S
	PeerAddr net.Addr
	SocketID uint64

	codec Codec[F]
	buf   bytes.Buffer
}

// New wraps stream with codec, ready to parse/read/write frames of
// type F.
func New[S io.ReadWriteCloser, F any](stream S, peerAddr net.Addr, socketID uint64, codec Codec[F]) *Conn[S, F] {
	return &Conn[S, F]{Stream: stream, PeerAddr: peerAddr, SocketID: socketID, codec: codec}
}

// ParseFrame attempts to parse one frame out of the bytes already
// buffered, without touching the stream. A false ok with a nil error
// means more bytes are needed.
func (c *Conn[S, F]) ParseFrame() (frame F, ok bool, err error) {
	return c.codec.Parse(&c.buf)
}

// ReadFrame pulls bytes from the stream into the buffer until
// ParseFrame succeeds or the peer closes the connection, in which
// case ok is false and err is nil (a clean close, not a read error).
func (c *Conn[S, F]) ReadFrame(ctx context.Context) (frame F, ok bool, err error) {
	if frame, ok, err = c.ParseFrame(); ok || err != nil {
		return
	}

	chunk := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			var zero F
			return zero, false, ctx.Err()
		default:
		}

		n, readErr := c.Stream.Read(chunk)
		if n > 0 {
			c.buf.Write(chunk[:n])
			if frame, ok, err = c.ParseFrame(); ok || err != nil {
				return
			}
		}
		if readErr != nil {
			var zero F
			if readErr == io.EOF {
				return zero, false, nil
			}
			return zero, false, fmt.Errorf("framed: reading stream: %w", readErr)
		}
	}
}

// WriteFrame serializes frame through the codec and writes it to the
// stream.
func (c *Conn[S, F]) WriteFrame(frame F) error {
	if err := c.codec.Write(c.Stream, frame); err != nil {
		return fmt.Errorf("framed: writing frame: %w", err)
	}
	return nil
}

// Close closes the underlying stream.
func (c *Conn[S, F]) Close() error {
	return c.Stream.Close()
}
