package mp4io

import (
	"bytes"
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	AVC1 = Tag(0x61766331)
	AVC3 = Tag(0x61766333)
	HEV1 = Tag(0x68657631)
	HVC1 = Tag(0x68766331)
	MP4V = Tag(0x6d703476)

	visualEntrySize = sampleEntryHeaderSize + 70
)

// VisualSampleEntry is a video sample entry such as avc1 or hev1. The codec
// configuration (avcC, hvcC...) and any btrt/pasp boxes are its children.
type VisualSampleEntry struct {
	Format          Tag
	DataRefIdx      uint16
	PreDefined      [16]byte
	Width           uint16
	Height          uint16
	HorizResolution float64
	VertResolution  float64
	FrameCount      uint16
	CompressorName  [32]byte
	Depth           uint16
	PreDefined2     int16
	Container
	AtomPos
}

// NewVisualSampleEntry returns an entry with the usual 72 dpi, 24-bit defaults.
func NewVisualSampleEntry(format Tag, width, height uint16) *VisualSampleEntry {
	return &VisualSampleEntry{
		Format:          format,
		DataRefIdx:      1,
		Width:           width,
		Height:          height,
		HorizResolution: 72,
		VertResolution:  72,
		FrameCount:      1,
		Depth:           0x18,
		PreDefined2:     -1,
	}
}

func (v *VisualSampleEntry) Tag() Tag {
	return v.Format
}

func (v *VisualSampleEntry) Len() int {
	return HeaderSize + visualEntrySize + v.contentLen()
}

func (v *VisualSampleEntry) Marshal(b []byte) (n int) {
	n = putHeader(b, v.Format, v.Len(), false)
	n += putSampleEntryHeader(b[n:], v.DataRefIdx)
	n += copy(b[n:], v.PreDefined[:])
	pio.PutU16BE(b[n:], v.Width)
	pio.PutU16BE(b[n+2:], v.Height)
	n += 4
	PutFixed32(b[n:], v.HorizResolution)
	PutFixed32(b[n+4:], v.VertResolution)
	pio.PutU32BE(b[n+8:], 0)
	n += 12
	pio.PutU16BE(b[n:], v.FrameCount)
	n += 2
	n += copy(b[n:], v.CompressorName[:])
	pio.PutU16BE(b[n:], v.Depth)
	pio.PutI16BE(b[n+2:], v.PreDefined2)
	n += 4
	n += v.marshalContent(b[n:])
	return
}

func (v *VisualSampleEntry) Unmarshal(b []byte, offset int) (n int, err error) {
	v.AtomPos.setPos(offset, len(b))
	hdr := headerLen(b)
	v.Format = Tag(pio.U32BE(b[4:]))
	if len(b) < hdr+visualEntrySize {
		return 0, parseErr("VisualSampleEntry", offset+hdr, pio.ErrUnexpectedEndOfData)
	}
	r := pio.NewReader(b[hdr : hdr+visualEntrySize])
	v.DataRefIdx, _ = readSampleEntryHeader(r)
	p, _ := r.ReadBytes(16)
	copy(v.PreDefined[:], p)
	v.Width, _ = r.ReadU16()
	v.Height, _ = r.ReadU16()
	p, _ = r.ReadBytes(12)
	v.HorizResolution = GetFixed32(p)
	v.VertResolution = GetFixed32(p[4:])
	v.FrameCount, _ = r.ReadU16()
	p, _ = r.ReadBytes(32)
	copy(v.CompressorName[:], p)
	v.Depth, _ = r.ReadU16()
	pre, _ := r.ReadU16()
	v.PreDefined2 = int16(pre)

	start := hdr + visualEntrySize
	if v.Boxes, v.Padding, err = readAtoms(b[start:], offset+start); err != nil {
		return
	}
	return len(b), nil
}

func (v *VisualSampleEntry) String() string {
	name := v.CompressorName[:]
	if len(name) > 0 && int(name[0]) < len(name) {
		name = name[1 : 1+name[0]]
	}
	return fmt.Sprintf("%dx%d compressor=%q children=%d", v.Width, v.Height, bytes.TrimRight(name, "\x00"), len(v.Boxes))
}
