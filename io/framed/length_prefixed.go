package framed

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single length-prefixed frame's payload, a
// sanity cap against a peer claiming an absurd length.
const MaxFrameSize = 16 << 20

// LengthPrefixedCodec frames arbitrary byte payloads behind a 4-byte
// big-endian length prefix. It is the demo codec of this package; the
// stub and inj processors exchange messages over the in-process bus
// and do not use it.
type LengthPrefixedCodec struct{}

// Parse implements Codec[[]byte].
func (LengthPrefixedCodec) Parse(buf *bytes.Buffer) ([]byte, bool, error) {
	data := buf.Bytes()
	if len(data) < 4 {
		return nil, false, nil
	}
	length := binary.BigEndian.Uint32(data[:4])
	if length > MaxFrameSize {
		return nil, false, fmt.Errorf("framed: frame length %d exceeds max %d", length, MaxFrameSize)
	}
	if uint32(len(data)-4) < length {
		return nil, false, nil
	}

	buf.Next(4)
	payload := make([]byte, length)
	buf.Read(payload)
	return payload, true, nil
}

// Write implements Codec[[]byte].
func (LengthPrefixedCodec) Write(w io.Writer, frame []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(frame)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}
