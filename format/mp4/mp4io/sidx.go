package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	SIDX          = Tag(0x73696478)
	ReferenceSize = 12
)

type Reference struct {
	ReferenceType      uint8
	ReferencedSize     uint32
	SubsegmentDuration uint32
	StartsWithSAP      uint8
	SAPType            uint8
	SAPDeltaTime       uint32
}

// SegmentIndex is the sidx box.
type SegmentIndex struct {
	Version     uint8
	Flags       uint32
	ReferenceID uint32
	Timescale   uint32
	EarliestPT  uint64
	FirstOffset uint64
	Entries     []Reference
	AtomPos
}

func (s *SegmentIndex) Tag() Tag {
	return SIDX
}

func (s *SegmentIndex) Len() int {
	n := FullHeaderSize + 8 + 4
	if s.Version == 1 {
		n += 16
	} else {
		n += 8
	}
	return n + len(s.Entries)*ReferenceSize
}

func (s *SegmentIndex) Marshal(b []byte) (n int) {
	n = putFullHeader(b, SIDX, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], s.ReferenceID)
	n += 4
	pio.PutU32BE(b[n:], s.Timescale)
	n += 4
	if s.Version == 1 {
		pio.PutU64BE(b[n:], s.EarliestPT)
		n += 8
		pio.PutU64BE(b[n:], s.FirstOffset)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(s.EarliestPT))
		n += 4
		pio.PutU32BE(b[n:], uint32(s.FirstOffset))
		n += 4
	}
	pio.PutU16BE(b[n:], 0)
	n += 2
	pio.PutU16BE(b[n:], uint16(len(s.Entries)))
	n += 2
	for _, e := range s.Entries {
		pio.PutU32BE(b[n:], uint32(e.ReferenceType&1)<<31|e.ReferencedSize&0x7fffffff)
		n += 4
		pio.PutU32BE(b[n:], e.SubsegmentDuration)
		n += 4
		pio.PutU32BE(b[n:], uint32(e.StartsWithSAP&1)<<31|uint32(e.SAPType&7)<<28|e.SAPDeltaTime&0x0fffffff)
		n += 4
	}
	return
}

func (s *SegmentIndex) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if s.ReferenceID, err = r.ReadU32(); err != nil {
		return 0, fieldErr("ReferenceID", offset, r, err)
	}
	if s.Timescale, err = r.ReadU32(); err != nil {
		return 0, fieldErr("Timescale", offset, r, err)
	}
	if s.Version == 1 {
		if s.EarliestPT, err = r.ReadU64(); err != nil {
			return 0, fieldErr("EarliestPT", offset, r, err)
		}
		if s.FirstOffset, err = r.ReadU64(); err != nil {
			return 0, fieldErr("FirstOffset", offset, r, err)
		}
	} else {
		var v uint32
		if v, err = r.ReadU32(); err != nil {
			return 0, fieldErr("EarliestPT", offset, r, err)
		}
		s.EarliestPT = uint64(v)
		if v, err = r.ReadU32(); err != nil {
			return 0, fieldErr("FirstOffset", offset, r, err)
		}
		s.FirstOffset = uint64(v)
	}
	if err = r.Skip(2); err != nil {
		return 0, fieldErr("Reserved", offset, r, err)
	}
	var count uint16
	if count, err = r.ReadU16(); err != nil {
		return 0, fieldErr("ReferenceCount", offset, r, err)
	}
	if int(count)*ReferenceSize > r.Remaining() {
		return 0, fieldErr("References", offset, r, pio.ErrUnexpectedEndOfData)
	}
	s.Entries = make([]Reference, count)
	for i := range s.Entries {
		e := &s.Entries[i]
		v, _ := r.ReadU32()
		e.ReferenceType = uint8(v >> 31)
		e.ReferencedSize = v & 0x7fffffff
		e.SubsegmentDuration, _ = r.ReadU32()
		v, _ = r.ReadU32()
		e.StartsWithSAP = uint8(v >> 31)
		e.SAPType = uint8(v>>28) & 7
		e.SAPDeltaTime = v & 0x0fffffff
	}
	return len(b), nil
}

func (*SegmentIndex) Children() []Atom {
	return nil
}

func (s *SegmentIndex) String() string {
	return fmt.Sprintf("reference_id=%d timescale=%d references=%d", s.ReferenceID, s.Timescale, len(s.Entries))
}
