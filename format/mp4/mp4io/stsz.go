package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const STSZ = Tag(0x7374737a)

// SampleSize is the stsz box. A non-zero SampleSize means every one of the
// SampleCount samples has that size and Entries is empty.
type SampleSize struct {
	Version     uint8
	Flags       uint32
	SampleSize  uint32
	SampleCount uint32
	Entries     []uint32
	AtomPos
}

func (s *SampleSize) Tag() Tag {
	return STSZ
}

func (s *SampleSize) Uniform() bool {
	return s.SampleSize != 0
}

// Count returns the number of samples described by the box.
func (s *SampleSize) Count() int {
	if s.Uniform() {
		return int(s.SampleCount)
	}
	return len(s.Entries)
}

func (s *SampleSize) Size(i int) uint32 {
	if s.Uniform() {
		return s.SampleSize
	}
	return s.Entries[i]
}

func (s *SampleSize) Len() int {
	n := FullHeaderSize + 8
	if !s.Uniform() {
		n += 4 * len(s.Entries)
	}
	return n
}

func (s *SampleSize) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STSZ, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], s.SampleSize)
	n += 4
	if s.Uniform() {
		pio.PutU32BE(b[n:], s.SampleCount)
		n += 4
		return
	}
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, entry := range s.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (s *SampleSize) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if s.SampleSize, err = r.ReadU32(); err != nil {
		return 0, fieldErr("SampleSize", offset, r, err)
	}
	entrySize := 4
	if s.Uniform() {
		entrySize = 0
	}
	var count int
	if count, err = readCount(r, entrySize, offset); err != nil {
		return
	}
	s.SampleCount = uint32(count)
	s.Entries = nil
	if !s.Uniform() {
		s.Entries = make([]uint32, count)
		for i := range s.Entries {
			s.Entries[i], _ = r.ReadU32()
		}
	}
	return len(b), nil
}

func (*SampleSize) Children() []Atom {
	return nil
}

func (s *SampleSize) String() string {
	if s.Uniform() {
		return fmt.Sprintf("uniform=%d count=%d", s.SampleSize, s.SampleCount)
	}
	return fmt.Sprintf("entries=%d", len(s.Entries))
}
