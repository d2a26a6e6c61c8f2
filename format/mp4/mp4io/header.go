package mp4io

import (
	"math"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	HeaderSize      = 8
	LargeHeaderSize = 16
	FullHeaderSize  = HeaderSize + 4
)

// readHeader validates the box header at the start of b. A size of 0 extends the
// box to the end of b; a size of 1 is followed by a 64-bit size.
func readHeader(b []byte, offset int) (tag Tag, size int, hdrlen int, err error) {
	if len(b) < HeaderSize {
		err = parseErr("header", offset, pio.ErrUnexpectedEndOfData)
		return
	}
	tag = Tag(pio.U32BE(b[4:]))
	hdrlen = HeaderSize
	switch sz := pio.U32BE(b); sz {
	case 0:
		size = len(b)
	case 1:
		if len(b) < LargeHeaderSize {
			err = parseErr("largesize", offset, pio.ErrUnexpectedEndOfData)
			return
		}
		large := pio.U64BE(b[8:])
		if large > uint64(len(b)) {
			err = parseErr("largesize", offset, nil)
			return
		}
		size = int(large)
		hdrlen = LargeHeaderSize
	default:
		size = int(sz)
	}
	if size < hdrlen || size > len(b) {
		err = parseErr("size", offset, nil)
	}
	return
}

// headerLen returns the header length of an already validated box.
func headerLen(b []byte) int {
	if len(b) >= LargeHeaderSize && pio.U32BE(b) == 1 {
		return LargeHeaderSize
	}
	return HeaderSize
}

func needsLarge(payload int, large bool) bool {
	return large || payload+HeaderSize > math.MaxUint32
}

func boxHeaderLen(payload int, large bool) int {
	if needsLarge(payload, large) {
		return LargeHeaderSize
	}
	return HeaderSize
}

// putHeader writes a box header for a box of the given total size and returns its length.
func putHeader(b []byte, tag Tag, size int, large bool) int {
	pio.PutU32BE(b[4:], uint32(tag))
	if large {
		pio.PutU32BE(b, 1)
		pio.PutU64BE(b[8:], uint64(size))
		return LargeHeaderSize
	}
	pio.PutU32BE(b, uint32(size))
	return HeaderSize
}

// putFullHeader writes a box header followed by the version and flags word.
func putFullHeader(b []byte, tag Tag, size int, version uint8, flags uint32) int {
	putHeader(b, tag, size, false)
	pio.PutU8(b[8:], version)
	pio.PutU24BE(b[9:], flags)
	return FullHeaderSize
}

// readFullHeader returns a reader positioned after the version and flags word.
func readFullHeader(b []byte, offset int) (r *pio.Reader, version uint8, flags uint32, err error) {
	hdr := headerLen(b)
	if len(b) < hdr+4 {
		err = parseErr("fullbox", offset+hdr, pio.ErrUnexpectedEndOfData)
		return
	}
	version = pio.U8(b[hdr:])
	flags = pio.U24BE(b[hdr+1:])
	r = pio.NewReader(b[hdr+4:])
	return
}

func fieldErr(field string, offset int, r *pio.Reader, err error) error {
	return parseErr(field, offset+FullHeaderSize+r.Pos(), err)
}

// readCount reads a 32-bit entry count and checks that that many entries of
// entrySize bytes are left in r.
func readCount(r *pio.Reader, entrySize int, offset int) (count int, err error) {
	var c uint32
	if c, err = r.ReadU32(); err != nil {
		return 0, fieldErr("EntryCount", offset, r, err)
	}
	if entrySize > 0 && uint64(c)*uint64(entrySize) > uint64(r.Remaining()) {
		return 0, fieldErr("Entries", offset, r, pio.ErrUnexpectedEndOfData)
	}
	return int(c), nil
}
