package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const SUBS = Tag(0x73756273)

type SubSample struct {
	Size                    uint32 // 16 bits unless the box is version 1
	Priority                uint8
	Discardable             uint8
	CodecSpecificParameters uint32
}

// SubSampleEntry describes the sub-samples of the sample SampleDelta samples
// after the previous entry's sample.
type SubSampleEntry struct {
	SampleDelta uint32
	SubSamples  []SubSample
}

// SubSampleInfo is the subs box.
type SubSampleInfo struct {
	Version uint8
	Flags   uint32
	Entries []SubSampleEntry
	AtomPos
}

func (s *SubSampleInfo) Tag() Tag {
	return SUBS
}

func (s *SubSampleInfo) subSampleLen() int {
	if s.Version == 1 {
		return 10
	}
	return 8
}

func (s *SubSampleInfo) Len() int {
	n := FullHeaderSize + 4
	for _, e := range s.Entries {
		n += 6 + s.subSampleLen()*len(e.SubSamples)
	}
	return n
}

func (s *SubSampleInfo) Marshal(b []byte) (n int) {
	n = putFullHeader(b, SUBS, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, e := range s.Entries {
		pio.PutU32BE(b[n:], e.SampleDelta)
		pio.PutU16BE(b[n+4:], uint16(len(e.SubSamples)))
		n += 6
		for _, ss := range e.SubSamples {
			if s.Version == 1 {
				pio.PutU32BE(b[n:], ss.Size)
				n += 4
			} else {
				pio.PutU16BE(b[n:], uint16(ss.Size))
				n += 2
			}
			b[n] = ss.Priority
			b[n+1] = ss.Discardable
			pio.PutU32BE(b[n+2:], ss.CodecSpecificParameters)
			n += 6
		}
	}
	return
}

func (s *SubSampleInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, 6, offset); err != nil {
		return
	}
	s.Entries = make([]SubSampleEntry, count)
	for i := range s.Entries {
		e := &s.Entries[i]
		if e.SampleDelta, err = r.ReadU32(); err != nil {
			return 0, fieldErr("SampleDelta", offset, r, err)
		}
		var subCount uint16
		if subCount, err = r.ReadU16(); err != nil {
			return 0, fieldErr("SubsampleCount", offset, r, err)
		}
		if int(subCount)*s.subSampleLen() > r.Remaining() {
			return 0, fieldErr("SubSamples", offset, r, pio.ErrUnexpectedEndOfData)
		}
		e.SubSamples = make([]SubSample, subCount)
		for j := range e.SubSamples {
			ss := &e.SubSamples[j]
			if s.Version == 1 {
				ss.Size, _ = r.ReadU32()
			} else {
				v, _ := r.ReadU16()
				ss.Size = uint32(v)
			}
			ss.Priority, _ = r.ReadU8()
			ss.Discardable, _ = r.ReadU8()
			ss.CodecSpecificParameters, _ = r.ReadU32()
		}
	}
	return len(b), nil
}

func (*SubSampleInfo) Children() []Atom {
	return nil
}

func (s *SubSampleInfo) String() string {
	return fmt.Sprintf("entries=%d", len(s.Entries))
}
