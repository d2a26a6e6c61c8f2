package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	MP4A = Tag(0x6d703461)

	audioEntrySize = sampleEntryHeaderSize + 20
)

// MP4ADesc is the mp4a audio sample entry. SampleRate is in Hz; rates above
// 65535 are written as 0 since the field is 16.16 fixed point.
type MP4ADesc struct {
	DataRefIdx       uint16
	Version          uint16
	RevisionLevel    uint16
	Vendor           uint32
	NumberOfChannels uint16
	SampleSize       uint16
	CompressionID    uint16
	PacketSize       uint16
	SampleRate       uint32
	// QTExtension holds the extra fields of QuickTime version 1 and 2 entries.
	QTExtension []byte
	Container
	AtomPos
}

// NewMP4ADesc returns an entry with the fixed 2 channel, 16 bit layout used for AAC.
func NewMP4ADesc(sampleRate uint32, esds *ElemStreamDesc) *MP4ADesc {
	m := &MP4ADesc{
		DataRefIdx:       1,
		NumberOfChannels: 2,
		SampleSize:       16,
		SampleRate:       sampleRate,
	}
	if esds != nil {
		m.Add(esds)
	}
	return m
}

func (m *MP4ADesc) Tag() Tag {
	return MP4A
}

func (m *MP4ADesc) Conf() *ElemStreamDesc {
	return childOf[*ElemStreamDesc](&m.Container)
}

func (m *MP4ADesc) Len() int {
	return HeaderSize + audioEntrySize + len(m.QTExtension) + m.contentLen()
}

func (m *MP4ADesc) Marshal(b []byte) (n int) {
	n = putHeader(b, MP4A, m.Len(), false)
	n += putSampleEntryHeader(b[n:], m.DataRefIdx)
	pio.PutU16BE(b[n:], m.Version)
	pio.PutU16BE(b[n+2:], m.RevisionLevel)
	pio.PutU32BE(b[n+4:], m.Vendor)
	pio.PutU16BE(b[n+8:], m.NumberOfChannels)
	pio.PutU16BE(b[n+10:], m.SampleSize)
	pio.PutU16BE(b[n+12:], m.CompressionID)
	pio.PutU16BE(b[n+14:], m.PacketSize)
	if m.SampleRate > 0xffff {
		pio.PutU32BE(b[n+16:], 0)
	} else {
		pio.PutU32BE(b[n+16:], m.SampleRate<<16)
	}
	n += 20
	n += copy(b[n:], m.QTExtension)
	n += m.marshalContent(b[n:])
	return
}

func (m *MP4ADesc) Unmarshal(b []byte, offset int) (n int, err error) {
	m.AtomPos.setPos(offset, len(b))
	hdr := headerLen(b)
	r := pio.NewReader(b[hdr:])
	if len(b) < hdr+audioEntrySize {
		return 0, parseErr("AudioSampleEntry", offset+hdr, pio.ErrUnexpectedEndOfData)
	}
	m.DataRefIdx, _ = readSampleEntryHeader(r)
	m.Version, _ = r.ReadU16()
	m.RevisionLevel, _ = r.ReadU16()
	m.Vendor, _ = r.ReadU32()
	m.NumberOfChannels, _ = r.ReadU16()
	m.SampleSize, _ = r.ReadU16()
	m.CompressionID, _ = r.ReadU16()
	m.PacketSize, _ = r.ReadU16()
	rate, _ := r.ReadU32()
	m.SampleRate = rate >> 16

	var ext int
	switch m.Version {
	case 1:
		ext = 16
	case 2:
		ext = 36
	}
	if m.QTExtension, err = r.ReadBytes(ext); err != nil {
		return 0, parseErr("QTExtension", offset+hdr+r.Pos(), err)
	}
	if ext == 0 {
		m.QTExtension = nil
	}
	start := len(b) - r.Remaining()
	if m.Boxes, m.Padding, err = readAtoms(b[start:], offset+start); err != nil {
		return
	}
	return len(b), nil
}

func (m *MP4ADesc) String() string {
	return fmt.Sprintf("channels=%d sample_size=%d rate=%d", m.NumberOfChannels, m.SampleSize, m.SampleRate)
}
