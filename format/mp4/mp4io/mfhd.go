package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const MFHD = Tag(0x6d666864)

// MovieFragHeader is the mfhd box.
type MovieFragHeader struct {
	Version uint8
	Flags   uint32
	Seqnum  uint32
	AtomPos
}

func (m *MovieFragHeader) Tag() Tag {
	return MFHD
}

func (m *MovieFragHeader) Len() int {
	return FullHeaderSize + 4
}

func (m *MovieFragHeader) Marshal(b []byte) (n int) {
	n = putFullHeader(b, MFHD, m.Len(), m.Version, m.Flags)
	pio.PutU32BE(b[n:], m.Seqnum)
	return n + 4
}

func (m *MovieFragHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	m.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, m.Version, m.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if m.Seqnum, err = r.ReadU32(); err != nil {
		return 0, fieldErr("SequenceNumber", offset, r, err)
	}
	return len(b), nil
}

func (*MovieFragHeader) Children() []Atom {
	return nil
}

func (m *MovieFragHeader) String() string {
	return fmt.Sprintf("seqnum=%d", m.Seqnum)
}
