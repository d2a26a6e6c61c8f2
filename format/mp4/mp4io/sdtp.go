package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const SDTP = Tag(0x73647470)

// SampleDependencyEntry packs is_leading, sample_depends_on,
// sample_is_depended_on and sample_has_redundancy, two bits each.
type SampleDependencyEntry uint8

func NewSampleDependencyEntry(isLeading, dependsOn, isDependedOn, hasRedundancy uint8) SampleDependencyEntry {
	return SampleDependencyEntry(isLeading&3<<6 | dependsOn&3<<4 | isDependedOn&3<<2 | hasRedundancy&3)
}

func (e SampleDependencyEntry) IsLeading() uint8     { return uint8(e) >> 6 & 3 }
func (e SampleDependencyEntry) DependsOn() uint8     { return uint8(e) >> 4 & 3 }
func (e SampleDependencyEntry) IsDependedOn() uint8  { return uint8(e) >> 2 & 3 }
func (e SampleDependencyEntry) HasRedundancy() uint8 { return uint8(e) & 3 }

// SampleDependency is the sdtp box. It has one entry per sample and no count field.
type SampleDependency struct {
	Version uint8
	Flags   uint32
	Entries []SampleDependencyEntry
	AtomPos
}

func (s *SampleDependency) Tag() Tag {
	return SDTP
}

func (s *SampleDependency) Len() int {
	return FullHeaderSize + len(s.Entries)
}

func (s *SampleDependency) Marshal(b []byte) (n int) {
	n = putFullHeader(b, SDTP, s.Len(), s.Version, s.Flags)
	for _, e := range s.Entries {
		b[n] = uint8(e)
		n++
	}
	return
}

func (s *SampleDependency) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	s.Entries = make([]SampleDependencyEntry, r.Remaining())
	for i := range s.Entries {
		v, _ := r.ReadU8()
		s.Entries[i] = SampleDependencyEntry(v)
	}
	return len(b), nil
}

func (*SampleDependency) Children() []Atom {
	return nil
}

func (s *SampleDependency) String() string {
	return fmt.Sprintf("entries=%d", len(s.Entries))
}
