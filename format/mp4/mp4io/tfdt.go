package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const TFDT = Tag(0x74666474)

// TrackFragDecodeTime is the tfdt box.
type TrackFragDecodeTime struct {
	Version uint8
	Flags   uint32
	Time    uint64
	AtomPos
}

func (t *TrackFragDecodeTime) Tag() Tag {
	return TFDT
}

func (t *TrackFragDecodeTime) Len() int {
	if t.Version == 1 {
		return FullHeaderSize + 8
	}
	return FullHeaderSize + 4
}

func (t *TrackFragDecodeTime) Marshal(b []byte) (n int) {
	n = putFullHeader(b, TFDT, t.Len(), t.Version, t.Flags)
	if t.Version == 1 {
		pio.PutU64BE(b[n:], t.Time)
		return n + 8
	}
	pio.PutU32BE(b[n:], uint32(t.Time))
	return n + 4
}

func (t *TrackFragDecodeTime) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if t.Version == 1 {
		if t.Time, err = r.ReadU64(); err != nil {
			return 0, fieldErr("Time", offset, r, err)
		}
		return len(b), nil
	}
	var v uint32
	if v, err = r.ReadU32(); err != nil {
		return 0, fieldErr("Time", offset, r, err)
	}
	t.Time = uint64(v)
	return len(b), nil
}

func (*TrackFragDecodeTime) Children() []Atom {
	return nil
}

func (t *TrackFragDecodeTime) String() string {
	return fmt.Sprintf("time=%d", t.Time)
}
