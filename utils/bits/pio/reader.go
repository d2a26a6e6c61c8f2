package pio

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnexpectedEndOfData is returned when a read would move the cursor past the end of the data.
var ErrUnexpectedEndOfData = errors.New("pio: unexpected end of data")

// Reader is a big-endian cursor over a byte slice.
type Reader struct {
	b   []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.b) - r.pos
}

func (r *Reader) need(n int, what string) error {
	if n < 0 || r.Remaining() < n {
		return fmt.Errorf("%w: %s needs %d bytes at %d, have %d", ErrUnexpectedEndOfData, what, n, r.pos, r.Remaining())
	}
	return nil
}

func (r *Reader) Skip(n int) error {
	if err := r.need(n, "skip"); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *Reader) ReadU8() (v uint8, err error) {
	if err = r.need(1, "u8"); err != nil {
		return
	}
	v = U8(r.b[r.pos:])
	r.pos++
	return
}

func (r *Reader) ReadU16() (v uint16, err error) {
	if err = r.need(2, "u16"); err != nil {
		return
	}
	v = U16BE(r.b[r.pos:])
	r.pos += 2
	return
}

func (r *Reader) ReadU24() (v uint32, err error) {
	if err = r.need(3, "u24"); err != nil {
		return
	}
	v = U24BE(r.b[r.pos:])
	r.pos += 3
	return
}

func (r *Reader) ReadU32() (v uint32, err error) {
	if err = r.need(4, "u32"); err != nil {
		return
	}
	v = U32BE(r.b[r.pos:])
	r.pos += 4
	return
}

func (r *Reader) ReadU64() (v uint64, err error) {
	if err = r.need(8, "u64"); err != nil {
		return
	}
	v = U64BE(r.b[r.pos:])
	r.pos += 8
	return
}

// ReadBytes returns the next n bytes without copying them.
func (r *Reader) ReadBytes(n int) (b []byte, err error) {
	if err = r.need(n, "bytes"); err != nil {
		return
	}
	b = r.b[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return
}

// ReadString reads a fixed-width string of n bytes; trailing NUL bytes are dropped.
func (r *Reader) ReadString(n int) (s string, err error) {
	var b []byte
	if b, err = r.ReadBytes(n); err != nil {
		return
	}
	s = string(bytes.TrimRight(b, "\x00"))
	return
}

// ReadCString reads a NUL-terminated string and consumes the terminator.
func (r *Reader) ReadCString() (s string, err error) {
	i := bytes.IndexByte(r.b[r.pos:], 0)
	if i < 0 {
		err = fmt.Errorf("%w: unterminated string at %d", ErrUnexpectedEndOfData, r.pos)
		return
	}
	s = string(r.b[r.pos : r.pos+i])
	r.pos += i + 1
	return
}
