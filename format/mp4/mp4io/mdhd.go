package mp4io

import (
	"fmt"
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const MDHD = Tag(0x6d646864)

// MediaHeader is the mdhd box.
type MediaHeader struct {
	Version    uint8
	Flags      uint32
	CreateTime time.Time
	ModifyTime time.Time
	TimeScale  uint32
	Duration   uint64
	Language   string // ISO 639-2/T code
	Quality    uint16
	AtomPos
}

func (m *MediaHeader) Tag() Tag {
	return MDHD
}

func (m *MediaHeader) Len() int {
	if m.Version == 1 {
		return FullHeaderSize + 32
	}
	return FullHeaderSize + 20
}

func (m *MediaHeader) Marshal(b []byte) (n int) {
	n = putFullHeader(b, MDHD, m.Len(), m.Version, m.Flags)
	n += putTimes(b[n:], m.Version, m.CreateTime, m.ModifyTime)
	pio.PutU32BE(b[n:], m.TimeScale)
	n += 4
	n += putDuration(b[n:], m.Version, m.Duration)
	pio.PutU16BE(b[n:], PackLanguage(m.Language))
	n += 2
	pio.PutU16BE(b[n:], m.Quality)
	n += 2
	return
}

func (m *MediaHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	m.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, m.Version, m.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if m.CreateTime, m.ModifyTime, err = readTimes(r, m.Version, offset); err != nil {
		return
	}
	if m.TimeScale, err = r.ReadU32(); err != nil {
		return 0, fieldErr("TimeScale", offset, r, err)
	}
	if m.Duration, err = readDuration(r, m.Version, offset); err != nil {
		return
	}
	var lang uint16
	if lang, err = r.ReadU16(); err != nil {
		return 0, fieldErr("Language", offset, r, err)
	}
	m.Language = UnpackLanguage(lang)
	if m.Quality, err = r.ReadU16(); err != nil {
		return 0, fieldErr("Quality", offset, r, err)
	}
	return len(b), nil
}

func (*MediaHeader) Children() []Atom {
	return nil
}

func (m *MediaHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d language=%s", m.TimeScale, m.Duration, m.Language)
}

// PackLanguage packs a three letter code into 15 bits, 5 bits per letter offset by 0x60.
func PackLanguage(lang string) (v uint16) {
	if len(lang) != 3 {
		lang = "und"
	}
	for i := 0; i < 3; i++ {
		v = v<<5 | uint16(lang[i]-0x60)&0x1f
	}
	return
}

func UnpackLanguage(v uint16) string {
	b := []byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	}
	return string(b)
}
