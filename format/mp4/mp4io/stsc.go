package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const STSC = Tag(0x73747363)

type SampleToChunkEntry struct {
	FirstChunk      uint32 // 1-based
	SamplesPerChunk uint32
	SampleDescID    uint32
}

const LenSampleToChunkEntry = 12

// SampleToChunk is the stsc box.
type SampleToChunk struct {
	Version uint8
	Flags   uint32
	Entries []SampleToChunkEntry
	AtomPos
}

func (s *SampleToChunk) Tag() Tag {
	return STSC
}

func (s *SampleToChunk) Len() int {
	return FullHeaderSize + 4 + LenSampleToChunkEntry*len(s.Entries)
}

func (s *SampleToChunk) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STSC, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, e := range s.Entries {
		pio.PutU32BE(b[n:], e.FirstChunk)
		pio.PutU32BE(b[n+4:], e.SamplesPerChunk)
		pio.PutU32BE(b[n+8:], e.SampleDescID)
		n += LenSampleToChunkEntry
	}
	return
}

func (s *SampleToChunk) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, LenSampleToChunkEntry, offset); err != nil {
		return
	}
	s.Entries = make([]SampleToChunkEntry, count)
	for i := range s.Entries {
		s.Entries[i].FirstChunk, _ = r.ReadU32()
		s.Entries[i].SamplesPerChunk, _ = r.ReadU32()
		s.Entries[i].SampleDescID, _ = r.ReadU32()
	}
	return len(b), nil
}

func (*SampleToChunk) Children() []Atom {
	return nil
}

func (s *SampleToChunk) String() string {
	return fmt.Sprintf("entries=%d", len(s.Entries))
}

// SamplesPerChunk expands the run table to one sample count per chunk.
func (s *SampleToChunk) SamplesPerChunk(chunks int) []uint32 {
	r := make([]uint32, chunks)
	for i, e := range s.Entries {
		last := chunks
		if i+1 < len(s.Entries) {
			last = min(int(s.Entries[i+1].FirstChunk)-1, chunks)
		}
		for c := max(int(e.FirstChunk)-1, 0); c < last; c++ {
			r[c] = e.SamplesPerChunk
		}
	}
	return r
}
