package messages

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Decoder splits a byte stream into frames.
// Bytes are accumulated with Feed and complete frames are taken out with Next.
// A partial frame stays buffered until the rest of it arrives.
type Decoder struct {
	buf []byte
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends bytes read from the stream.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes not yet consumed.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Next returns the next complete message, or nil if the buffered bytes
// do not hold a whole frame yet. A ProtocolError leaves the decoder unusable.
func (d *Decoder) Next() (Message, error) {
	if len(d.buf) < HeaderSize {
		return nil, nil
	}
	t := MessageType(int32(binary.BigEndian.Uint32(d.buf)))
	n, complete, err := frameLength(t, d.buf)
	if err != nil {
		return nil, err
	}
	if !complete || len(d.buf) < n {
		return nil, nil
	}

	msg, err := Decode(d.buf[:n])
	if err != nil {
		return nil, err
	}

	remaining := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:remaining]
	return msg, nil
}

// ReadMessage reads exactly one frame from r, blocking until it is complete.
func ReadMessage(r io.Reader) (Message, error) {
	var header [HeaderSize + LengthPrefixSize]byte
	if _, err := io.ReadFull(r, header[:HeaderSize]); err != nil {
		return nil, err
	}
	t := MessageType(int32(binary.BigEndian.Uint32(header[:])))

	frame := header[:HeaderSize]
	if _, ok := maxTextLengths[t]; ok {
		if _, err := io.ReadFull(r, header[HeaderSize:]); err != nil {
			return nil, fmt.Errorf("failed to read length of %s: %w", t, err)
		}
		frame = header[:]
	}

	n, _, err := frameLength(t, frame)
	if err != nil {
		return nil, err
	}

	full := make([]byte, n)
	copy(full, frame)
	if _, err := io.ReadFull(r, full[len(frame):]); err != nil {
		return nil, fmt.Errorf("failed to read payload of %s: %w", t, err)
	}
	return Decode(full)
}

// WriteMessage encodes m and writes it to w as a single frame.
func WriteMessage(w io.Writer, m Message) error {
	b, err := Encode(m)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.Type(), err)
	}
	return nil
}
