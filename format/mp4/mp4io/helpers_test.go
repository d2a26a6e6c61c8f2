package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

func u16(v uint16) []byte {
	b := make([]byte, 2)
	pio.PutU16BE(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	pio.PutU32BE(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	pio.PutU64BE(b, v)
	return b
}

func join(parts ...[]byte) (b []byte) {
	for _, p := range parts {
		b = append(b, p...)
	}
	return
}

// box builds a plain box around the concatenated parts.
func box(tag string, parts ...[]byte) []byte {
	payload := join(parts...)
	return join(u32(uint32(HeaderSize+len(payload))), []byte(tag), payload)
}

// fullbox builds a box whose payload starts with version and flags.
func fullbox(tag string, version uint8, flags uint32, parts ...[]byte) []byte {
	vf := u32(flags)
	vf[0] = version
	return box(tag, append([][]byte{vf}, parts...)...)
}

func zeros(n int) []byte {
	return make([]byte, n)
}

func parseOne(b []byte) (Atom, error) {
	atoms, err := ReadAtoms(b, 0)
	if err != nil {
		return nil, err
	}
	return atoms[0], nil
}
