package a2s

import (
	"bytes"
	"encoding/binary"
	"math"
)

// reader walks a single reply datagram with a forward-only cursor.
// All multi-byte fields are little-endian.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// remaining returns the number of unread bytes.
func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// next returns the following n bytes and advances the cursor.
func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncated
	}

	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

func (r *reader) skip(n int) error {
	_, err := r.next(n)
	return err
}

func (r *reader) readByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) readInt32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) readFloat32() (float32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// readBytes returns a copy of the following n bytes.
func (r *reader) readBytes(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), b...), nil
}

// readCString reads a 0x00-terminated string. Bytes are taken verbatim,
// the protocol only guarantees a single-byte ASCII-compatible encoding.
func (r *reader) readCString() (string, error) {
	end := bytes.IndexByte(r.buf[r.pos:], 0)
	if end < 0 {
		return "", ErrTruncated
	}

	s := string(r.buf[r.pos : r.pos+end])
	r.pos += end + 1

	return s, nil
}
