package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STSD = Tag(0x73747364)

// SampleDesc is the stsd box. Every child is a sample entry.
type SampleDesc struct {
	Version uint8
	Flags   uint32
	Container
	AtomPos
}

func (s *SampleDesc) Tag() Tag {
	return STSD
}

func (s *SampleDesc) Len() int {
	return FullHeaderSize + 4 + s.contentLen()
}

func (s *SampleDesc) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STSD, s.Len(), s.Version, s.Flags)
	pio.PutU32BE(b[n:], uint32(len(s.Boxes)))
	n += 4
	n += s.marshalContent(b[n:])
	return
}

func (s *SampleDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if _, err = r.ReadU32(); err != nil {
		return 0, fieldErr("EntryCount", offset, r, err)
	}
	start := len(b) - r.Remaining()
	if s.Boxes, s.Padding, err = readAtoms(b[start:], offset+start); err != nil {
		return
	}
	return len(b), nil
}

func (s *SampleDesc) Visual() *VisualSampleEntry {
	return childOf[*VisualSampleEntry](&s.Container)
}

func (s *SampleDesc) Audio() *MP4ADesc {
	return childOf[*MP4ADesc](&s.Container)
}

const sampleEntryHeaderSize = 8

// putSampleEntryHeader writes the reserved block and data reference index that start every sample entry.
func putSampleEntryHeader(b []byte, dataRefIdx uint16) int {
	clear(b[:6])
	pio.PutU16BE(b[6:], dataRefIdx)
	return sampleEntryHeaderSize
}

func readSampleEntryHeader(r *pio.Reader) (dataRefIdx uint16, err error) {
	if err = r.Skip(6); err != nil {
		return
	}
	return r.ReadU16()
}
