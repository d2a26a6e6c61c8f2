package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	TFHD                  = Tag(0x74666864)
	TFHDBaseDataOffset    = uint32(0x01)
	TFHDStsdID            = uint32(0x02)
	TFHDDefaultDuration   = uint32(0x08)
	TFHDDefaultSize       = uint32(0x10)
	TFHDDefaultFlags      = uint32(0x20)
	TFHDDurationIsEmpty   = uint32(0x10000)
	TFHDDefaultBaseIsMOOF = uint32(0x20000)
)

// TrackFragHeader is the tfhd box. Optional fields are present when their flag is set.
type TrackFragHeader struct {
	Version         uint8
	Flags           uint32
	TrackID         uint32
	BaseDataOffset  uint64
	StsdID          uint32
	DefaultDuration uint32
	DefaultSize     uint32
	DefaultFlags    uint32
	AtomPos
}

func (t *TrackFragHeader) Tag() Tag {
	return TFHD
}

func (t *TrackFragHeader) Len() int {
	n := FullHeaderSize + 4
	if t.Flags&TFHDBaseDataOffset != 0 {
		n += 8
	}
	for _, f := range [...]uint32{TFHDStsdID, TFHDDefaultDuration, TFHDDefaultSize, TFHDDefaultFlags} {
		if t.Flags&f != 0 {
			n += 4
		}
	}
	return n
}

func (t *TrackFragHeader) optional() []struct {
	flag uint32
	v    *uint32
} {
	return []struct {
		flag uint32
		v    *uint32
	}{
		{TFHDStsdID, &t.StsdID},
		{TFHDDefaultDuration, &t.DefaultDuration},
		{TFHDDefaultSize, &t.DefaultSize},
		{TFHDDefaultFlags, &t.DefaultFlags},
	}
}

func (t *TrackFragHeader) Marshal(b []byte) (n int) {
	n = putFullHeader(b, TFHD, t.Len(), t.Version, t.Flags)
	pio.PutU32BE(b[n:], t.TrackID)
	n += 4
	if t.Flags&TFHDBaseDataOffset != 0 {
		pio.PutU64BE(b[n:], t.BaseDataOffset)
		n += 8
	}
	for _, o := range t.optional() {
		if t.Flags&o.flag != 0 {
			pio.PutU32BE(b[n:], *o.v)
			n += 4
		}
	}
	return
}

func (t *TrackFragHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if t.TrackID, err = r.ReadU32(); err != nil {
		return 0, fieldErr("TrackID", offset, r, err)
	}
	if t.Flags&TFHDBaseDataOffset != 0 {
		if t.BaseDataOffset, err = r.ReadU64(); err != nil {
			return 0, fieldErr("BaseDataOffset", offset, r, err)
		}
	}
	for _, o := range t.optional() {
		if t.Flags&o.flag == 0 {
			continue
		}
		if *o.v, err = r.ReadU32(); err != nil {
			return 0, fieldErr("Defaults", offset, r, err)
		}
	}
	return len(b), nil
}

func (*TrackFragHeader) Children() []Atom {
	return nil
}

func (t *TrackFragHeader) String() string {
	return fmt.Sprintf("track_id=%d flags=0x%06x", t.TrackID, t.Flags)
}
