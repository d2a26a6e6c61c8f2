package mp4io

import (
	"fmt"
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	TKHD = Tag(0x746b6864)

	TKHDEnabled   = 0x000001
	TKHDInMovie   = 0x000002
	TKHDInPreview = 0x000004
)

// TrackHeader is the tkhd box.
type TrackHeader struct {
	Version        uint8
	Flags          uint32
	CreateTime     time.Time
	ModifyTime     time.Time
	TrackID        uint32
	Duration       uint64
	Layer          int16
	AlternateGroup int16
	Volume         float64
	Matrix         [9]int32
	TrackWidth     float64
	TrackHeight    float64
	AtomPos
}

func (t *TrackHeader) Tag() Tag {
	return TKHD
}

func (t *TrackHeader) Len() int {
	if t.Version == 1 {
		return FullHeaderSize + 92
	}
	return FullHeaderSize + 80
}

func (t *TrackHeader) Marshal(b []byte) (n int) {
	n = putFullHeader(b, TKHD, t.Len(), t.Version, t.Flags)
	n += putTimes(b[n:], t.Version, t.CreateTime, t.ModifyTime)
	pio.PutU32BE(b[n:], t.TrackID)
	n += 4
	pio.PutU32BE(b[n:], 0)
	n += 4
	n += putDuration(b[n:], t.Version, t.Duration)
	clear(b[n : n+8])
	n += 8
	pio.PutI16BE(b[n:], t.Layer)
	n += 2
	pio.PutI16BE(b[n:], t.AlternateGroup)
	n += 2
	PutFixed16(b[n:], t.Volume)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	n += putMatrix(b[n:], t.Matrix)
	PutFixed32(b[n:], t.TrackWidth)
	n += 4
	PutFixed32(b[n:], t.TrackHeight)
	n += 4
	return
}

func (t *TrackHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if t.CreateTime, t.ModifyTime, err = readTimes(r, t.Version, offset); err != nil {
		return
	}
	if t.TrackID, err = r.ReadU32(); err != nil {
		return 0, fieldErr("TrackID", offset, r, err)
	}
	if err = r.Skip(4); err != nil {
		return 0, fieldErr("Reserved", offset, r, err)
	}
	if t.Duration, err = readDuration(r, t.Version, offset); err != nil {
		return
	}
	var fixed []byte
	if fixed, err = r.ReadBytes(16); err != nil {
		return 0, fieldErr("Layer", offset, r, err)
	}
	t.Layer = pio.I16BE(fixed[8:])
	t.AlternateGroup = pio.I16BE(fixed[10:])
	t.Volume = GetFixed16(fixed[12:])
	if t.Matrix, err = readMatrix(r, offset); err != nil {
		return
	}
	if fixed, err = r.ReadBytes(8); err != nil {
		return 0, fieldErr("TrackWidth", offset, r, err)
	}
	t.TrackWidth = GetFixed32(fixed)
	t.TrackHeight = GetFixed32(fixed[4:])
	return len(b), nil
}

func (*TrackHeader) Children() []Atom {
	return nil
}

func (t *TrackHeader) String() string {
	return fmt.Sprintf("track_id=%d duration=%d %gx%g", t.TrackID, t.Duration, t.TrackWidth, t.TrackHeight)
}
