package pio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	b := make([]byte, 8)

	PutU16BE(b, 0xBEEF)
	require.Equal(t, []byte{0xBE, 0xEF}, b[:2])
	require.Equal(t, uint16(0xBEEF), U16BE(b))

	PutU24BE(b, 0x123456)
	require.Equal(t, []byte{0x12, 0x34, 0x56}, b[:3])
	require.Equal(t, uint32(0x123456), U24BE(b))

	PutU32BE(b, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), U32BE(b))

	PutU64BE(b, 0x0102030405060708)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b)
	require.Equal(t, uint64(0x0102030405060708), U64BE(b))

	PutI16BE(b, -2)
	require.Equal(t, int16(-2), I16BE(b))
	PutI32BE(b, -70000)
	require.Equal(t, int32(-70000), I32BE(b))
	PutI64BE(b, -1)
	require.Equal(t, int64(-1), I64BE(b))
}

func TestPutString(t *testing.T) {
	t.Parallel()

	b := []byte{0xff, 0xff, 0xff, 0xff, 0xff}
	PutString(b, "ab", 4)
	require.Equal(t, []byte{'a', 'b', 0, 0, 0xff}, b)

	PutString(b, "abcdef", 3)
	require.Equal(t, []byte{'a', 'b', 'c', 0, 0xff}, b)
}

func TestReader(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a,
		0, 0, 0, 0, 0, 0, 0x01, 0x00,
		'e', 'n', 'g', 0,
		'h', 'i', 0,
	})

	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), u16)

	u24, err := r.ReadU24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x040506), u24)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x0708090a), u32)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(256), u64)

	s, err := r.ReadString(4)
	require.NoError(t, err)
	require.Equal(t, "eng", s)

	s, err = r.ReadCString()
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	require.Equal(t, 0, r.Remaining())
	require.Equal(t, 25, r.Pos())
}

func TestReaderPastEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		read func(r *Reader) error
	}{
		{"u16", func(r *Reader) error { _, err := r.ReadU16(); return err }},
		{"u24", func(r *Reader) error { _, err := r.ReadU24(); return err }},
		{"u32", func(r *Reader) error { _, err := r.ReadU32(); return err }},
		{"u64", func(r *Reader) error { _, err := r.ReadU64(); return err }},
		{"bytes", func(r *Reader) error { _, err := r.ReadBytes(2); return err }},
		{"cstring", func(r *Reader) error { _, err := r.ReadCString(); return err }},
		{"skip", func(r *Reader) error { return r.Skip(5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewReader([]byte{0x01})
			err := tt.read(r)
			require.ErrorIs(t, err, ErrUnexpectedEndOfData)
			require.Equal(t, 0, r.Pos())
		})
	}
}
