package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const STSS = Tag(0x73747373)

// SyncSample is the stss box. Entries are 1-based sample numbers in increasing order.
type SyncSample struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (s *SyncSample) Tag() Tag {
	return STSS
}

func (s *SyncSample) Len() int {
	return FullHeaderSize + 4 + 4*len(s.Entries)
}

func (s *SyncSample) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STSS, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, e := range s.Entries {
		pio.PutU32BE(b[n:], e)
		n += 4
	}
	return
}

func (s *SyncSample) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, 4, offset); err != nil {
		return
	}
	s.Entries = make([]uint32, count)
	for i := range s.Entries {
		s.Entries[i], _ = r.ReadU32()
	}
	return len(b), nil
}

func (*SyncSample) Children() []Atom {
	return nil
}

func (s *SyncSample) String() string {
	return fmt.Sprintf("entries=%d", len(s.Entries))
}
