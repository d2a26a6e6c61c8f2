package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

// Descriptor tags of ISO/IEC 14496-1.
const (
	MP4ESDescrTag          = 3
	MP4DecConfigDescrTag   = 4
	MP4DecSpecificDescrTag = 5
	MP4SLConfigDescrTag    = 6
)

const (
	ESDS = Tag(0x65736473)

	// ObjectTypeAudioISO14496_3 is the objectTypeIndication of MPEG-4 audio.
	ObjectTypeAudioISO14496_3 = 0x40
	StreamTypeAudio           = 0x05

	esFlagStreamDependence = 0x80
	esFlagURL              = 0x40
	esFlagOCRStream        = 0x20
)

// ElemStreamDesc is the esds box: an ES_Descriptor with its decoder configuration
// and SL configuration.
type ElemStreamDesc struct {
	Version uint8
	Flags   uint32

	ESID           uint16
	StreamPriority uint8
	DependsOnESID  *uint16
	URL            []byte
	OCRESID        *uint16

	ObjectType   uint8
	StreamType   uint8 // 6 bits
	UpStream     bool
	BufferSizeDB uint32 // 24 bits
	MaxBitrate   uint32
	AvgBitrate   uint32
	// DecConfig is the DecoderSpecificInfo payload, an AudioSpecificConfig for AAC.
	DecConfig []byte
	// DecConfigExtra keeps descriptors following DecoderSpecificInfo, header included.
	DecConfigExtra []byte

	SLPredefined uint8
	SLConfig     []byte
	// Extra keeps descriptors following SLConfigDescriptor, header included.
	Extra []byte

	// LengthSize is the width of every descriptor length field; 0 means 4.
	LengthSize int
	AtomPos
}

// NewAudioElemStreamDesc returns the esds of an MPEG-4 audio stream.
func NewAudioElemStreamDesc(decConfig []byte, maxBitrate, avgBitrate uint32) *ElemStreamDesc {
	return &ElemStreamDesc{
		ObjectType:   ObjectTypeAudioISO14496_3,
		StreamType:   StreamTypeAudio,
		BufferSizeDB: 1536,
		MaxBitrate:   maxBitrate,
		AvgBitrate:   avgBitrate,
		DecConfig:    decConfig,
		SLPredefined: 2,
	}
}

func (e *ElemStreamDesc) Tag() Tag {
	return ESDS
}

func (e *ElemStreamDesc) Children() []Atom {
	return nil
}

func (e *ElemStreamDesc) lenWidth() int {
	if e.LengthSize <= 0 || e.LengthSize > 4 {
		return 4
	}
	return e.LengthSize
}

func (e *ElemStreamDesc) decConfigLen() int {
	n := 13
	if e.DecConfig != nil {
		n += 1 + e.lenWidth() + len(e.DecConfig)
	}
	return n + len(e.DecConfigExtra)
}

func (e *ElemStreamDesc) slConfigLen() int {
	return 1 + len(e.SLConfig)
}

func (e *ElemStreamDesc) esLen() int {
	n := 3
	if e.DependsOnESID != nil {
		n += 2
	}
	if e.URL != nil {
		n += 1 + len(e.URL)
	}
	if e.OCRESID != nil {
		n += 2
	}
	w := e.lenWidth()
	n += 1 + w + e.decConfigLen()
	n += 1 + w + e.slConfigLen()
	return n + len(e.Extra)
}

func (e *ElemStreamDesc) Len() int {
	return FullHeaderSize + 1 + e.lenWidth() + e.esLen()
}

func (e *ElemStreamDesc) putDescHeader(b []byte, tag uint8, length int) int {
	w := e.lenWidth()
	b[0] = tag
	for i := 0; i < w; i++ {
		c := uint8(length>>(7*(w-1-i))) & 0x7f
		if i < w-1 {
			c |= 0x80
		}
		b[1+i] = c
	}
	return 1 + w
}

func (e *ElemStreamDesc) Marshal(b []byte) (n int) {
	n = putFullHeader(b, ESDS, e.Len(), e.Version, e.Flags)
	n += e.putDescHeader(b[n:], MP4ESDescrTag, e.esLen())

	pio.PutU16BE(b[n:], e.ESID)
	n += 2
	flags := e.StreamPriority & 0x1f
	if e.DependsOnESID != nil {
		flags |= esFlagStreamDependence
	}
	if e.URL != nil {
		flags |= esFlagURL
	}
	if e.OCRESID != nil {
		flags |= esFlagOCRStream
	}
	b[n] = flags
	n++
	if e.DependsOnESID != nil {
		pio.PutU16BE(b[n:], *e.DependsOnESID)
		n += 2
	}
	if e.URL != nil {
		b[n] = uint8(len(e.URL))
		n++
		n += copy(b[n:], e.URL)
	}
	if e.OCRESID != nil {
		pio.PutU16BE(b[n:], *e.OCRESID)
		n += 2
	}

	n += e.putDescHeader(b[n:], MP4DecConfigDescrTag, e.decConfigLen())
	b[n] = e.ObjectType
	streamType := e.StreamType<<2 | 1
	if e.UpStream {
		streamType |= 2
	}
	b[n+1] = streamType
	pio.PutU24BE(b[n+2:], e.BufferSizeDB)
	pio.PutU32BE(b[n+5:], e.MaxBitrate)
	pio.PutU32BE(b[n+9:], e.AvgBitrate)
	n += 13
	if e.DecConfig != nil {
		n += e.putDescHeader(b[n:], MP4DecSpecificDescrTag, len(e.DecConfig))
		n += copy(b[n:], e.DecConfig)
	}
	n += copy(b[n:], e.DecConfigExtra)

	n += e.putDescHeader(b[n:], MP4SLConfigDescrTag, e.slConfigLen())
	b[n] = e.SLPredefined
	n++
	n += copy(b[n:], e.SLConfig)

	n += copy(b[n:], e.Extra)
	return
}

func (e *ElemStreamDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	e.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, e.Version, e.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	base := offset + len(b) - r.Remaining()
	rest, _ := r.ReadBytes(r.Remaining())

	tag, body, width, _, err := readDesc(rest, base)
	if err != nil {
		return
	}
	if tag != MP4ESDescrTag {
		return 0, parseErr("ES_Descriptor", base, nil)
	}
	e.LengthSize = width
	if err = e.parseES(body, base+1+width); err != nil {
		return
	}
	return len(b), nil
}

func (e *ElemStreamDesc) parseES(b []byte, offset int) (err error) {
	r := pio.NewReader(b)
	if e.ESID, err = r.ReadU16(); err != nil {
		return parseErr("ES_ID", offset, err)
	}
	var flags uint8
	if flags, err = r.ReadU8(); err != nil {
		return parseErr("ES_Flags", offset+r.Pos(), err)
	}
	e.StreamPriority = flags & 0x1f
	if flags&esFlagStreamDependence != 0 {
		var id uint16
		if id, err = r.ReadU16(); err != nil {
			return parseErr("DependsOn_ES_ID", offset+r.Pos(), err)
		}
		e.DependsOnESID = &id
	}
	if flags&esFlagURL != 0 {
		var l uint8
		if l, err = r.ReadU8(); err != nil {
			return parseErr("URLlength", offset+r.Pos(), err)
		}
		if e.URL, err = r.ReadBytes(int(l)); err != nil {
			return parseErr("URLstring", offset+r.Pos(), err)
		}
	}
	if flags&esFlagOCRStream != 0 {
		var id uint16
		if id, err = r.ReadU16(); err != nil {
			return parseErr("OCR_ES_Id", offset+r.Pos(), err)
		}
		e.OCRESID = &id
	}

	var seenDec, seenSL bool
	pos := r.Pos()
	for pos < len(b) {
		tag, body, width, size, derr := readDesc(b[pos:], offset+pos)
		if derr != nil {
			return derr
		}
		switch {
		case tag == MP4DecConfigDescrTag && !seenDec:
			seenDec = true
			if err = e.parseDecConfig(body, offset+pos+1+width); err != nil {
				return
			}
		case tag == MP4SLConfigDescrTag && !seenSL:
			seenSL = true
			if len(body) < 1 {
				return parseErr("SLConfigDescriptor", offset+pos, pio.ErrUnexpectedEndOfData)
			}
			e.SLPredefined = body[0]
			e.SLConfig = body[1:]
		default:
			e.Extra = append(e.Extra, b[pos:pos+size]...)
		}
		pos += size
	}
	return
}

func (e *ElemStreamDesc) parseDecConfig(b []byte, offset int) error {
	if len(b) < 13 {
		return parseErr("DecoderConfigDescriptor", offset, pio.ErrUnexpectedEndOfData)
	}
	e.ObjectType = b[0]
	e.StreamType = b[1] >> 2
	e.UpStream = b[1]&2 != 0
	e.BufferSizeDB = pio.U24BE(b[2:])
	e.MaxBitrate = pio.U32BE(b[5:])
	e.AvgBitrate = pio.U32BE(b[9:])
	pos := 13
	for pos < len(b) {
		tag, body, _, size, err := readDesc(b[pos:], offset+pos)
		if err != nil {
			return err
		}
		if tag == MP4DecSpecificDescrTag && e.DecConfig == nil && len(e.DecConfigExtra) == 0 {
			e.DecConfig = body
		} else {
			e.DecConfigExtra = append(e.DecConfigExtra, b[pos:pos+size]...)
		}
		pos += size
	}
	return nil
}

// readDesc reads one descriptor header and returns its body and the total size
// including the header.
func readDesc(b []byte, offset int) (tag uint8, body []byte, width int, size int, err error) {
	if len(b) < 2 {
		err = parseErr("descriptor", offset, pio.ErrUnexpectedEndOfData)
		return
	}
	tag = b[0]
	length := 0
	for width < 4 {
		if 1+width >= len(b) {
			err = parseErr("descriptor length", offset, pio.ErrUnexpectedEndOfData)
			return
		}
		c := b[1+width]
		width++
		length = length<<7 | int(c&0x7f)
		if c&0x80 == 0 {
			break
		}
	}
	size = 1 + width + length
	if size > len(b) {
		err = parseErr("descriptor body", offset, pio.ErrUnexpectedEndOfData)
		return
	}
	body = b[1+width : size]
	return
}

func (e *ElemStreamDesc) String() string {
	return fmt.Sprintf("object_type=0x%02x stream_type=%d max_bitrate=%d avg_bitrate=%d dec_config=%x",
		e.ObjectType, e.StreamType, e.MaxBitrate, e.AvgBitrate, e.DecConfig)
}
