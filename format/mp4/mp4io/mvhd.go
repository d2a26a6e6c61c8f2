package mp4io

import (
	"fmt"
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	MVHD             = Tag(0x6d766864)
	defaultTimeScale = 1000
)

// IdentityMatrix is the unity transformation used by mvhd and tkhd.
var IdentityMatrix = [9]int32{
	0x00010000, 0, 0,
	0, 0x00010000, 0,
	0, 0, 0x40000000,
}

func NewMovieHeader() *MovieHeader {
	now := time.Now().UTC().Truncate(time.Second)
	return &MovieHeader{
		CreateTime:      now,
		ModifyTime:      now,
		TimeScale:       defaultTimeScale,
		PreferredRate:   1,
		PreferredVolume: 1,
		Matrix:          IdentityMatrix,
		NextTrackID:     1,
	}
}

// MovieHeader is the mvhd box.
type MovieHeader struct {
	Version         uint8     // 1 signals 64-bit times
	Flags           uint32    // 3 bytes
	CreateTime      time.Time // seconds since midnight, Jan 1, 1904, in UTC
	ModifyTime      time.Time
	TimeScale       uint32 // time units per second
	Duration        uint64 // in TimeScale units
	PreferredRate   float64
	PreferredVolume float64
	Matrix          [9]int32
	NextTrackID     uint32
	AtomPos
}

func (m *MovieHeader) Tag() Tag {
	return MVHD
}

func (m *MovieHeader) Len() int {
	if m.Version == 1 {
		return FullHeaderSize + 108
	}
	return FullHeaderSize + 96
}

func (m *MovieHeader) Marshal(b []byte) (n int) {
	n = putFullHeader(b, MVHD, m.Len(), m.Version, m.Flags)
	n += putTimes(b[n:], m.Version, m.CreateTime, m.ModifyTime)
	pio.PutU32BE(b[n:], m.TimeScale)
	n += 4
	n += putDuration(b[n:], m.Version, m.Duration)
	PutFixed32(b[n:], m.PreferredRate)
	n += 4
	PutFixed16(b[n:], m.PreferredVolume)
	n += 2
	clear(b[n : n+10])
	n += 10
	n += putMatrix(b[n:], m.Matrix)
	clear(b[n : n+24])
	n += 24
	pio.PutU32BE(b[n:], m.NextTrackID)
	n += 4
	return
}

func (m *MovieHeader) Unmarshal(b []byte, offset int) (n int, err error) {
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
	var fixed []byte
	if fixed, err = r.ReadBytes(6); err != nil {
		return 0, fieldErr("PreferredRate", offset, r, err)
	}
	m.PreferredRate = GetFixed32(fixed)
	m.PreferredVolume = GetFixed16(fixed[4:])
	if err = r.Skip(10); err != nil {
		return 0, fieldErr("Reserved", offset, r, err)
	}
	if m.Matrix, err = readMatrix(r, offset); err != nil {
		return
	}
	if err = r.Skip(24); err != nil {
		return 0, fieldErr("PreDefined", offset, r, err)
	}
	if m.NextTrackID, err = r.ReadU32(); err != nil {
		return 0, fieldErr("NextTrackID", offset, r, err)
	}
	return len(b), nil
}

func (*MovieHeader) Children() []Atom {
	return nil
}

func (m *MovieHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d next_track_id=%d", m.TimeScale, m.Duration, m.NextTrackID)
}

func putTimes(b []byte, version uint8, create, modify time.Time) int {
	if version == 1 {
		PutTime64(b, create)
		PutTime64(b[8:], modify)
		return 16
	}
	PutTime32(b, create)
	PutTime32(b[4:], modify)
	return 8
}

func readTimes(r *pio.Reader, version uint8, offset int) (create, modify time.Time, err error) {
	size := 4
	if version == 1 {
		size = 8
	}
	var b []byte
	if b, err = r.ReadBytes(2 * size); err != nil {
		err = fieldErr("CreateTime", offset, r, err)
		return
	}
	if version == 1 {
		return GetTime64(b), GetTime64(b[8:]), nil
	}
	return GetTime32(b), GetTime32(b[4:]), nil
}

func putDuration(b []byte, version uint8, d uint64) int {
	if version == 1 {
		pio.PutU64BE(b, d)
		return 8
	}
	pio.PutU32BE(b, uint32(d))
	return 4
}

func readDuration(r *pio.Reader, version uint8, offset int) (d uint64, err error) {
	if version == 1 {
		if d, err = r.ReadU64(); err != nil {
			err = fieldErr("Duration", offset, r, err)
		}
		return
	}
	var v uint32
	if v, err = r.ReadU32(); err != nil {
		err = fieldErr("Duration", offset, r, err)
	}
	return uint64(v), err
}

func putMatrix(b []byte, m [9]int32) int {
	for i, entry := range m {
		pio.PutI32BE(b[4*i:], entry)
	}
	return 36
}

func readMatrix(r *pio.Reader, offset int) (m [9]int32, err error) {
	var b []byte
	if b, err = r.ReadBytes(36); err != nil {
		err = fieldErr("Matrix", offset, r, err)
		return
	}
	for i := range m {
		m[i] = pio.I32BE(b[4*i:])
	}
	return
}
