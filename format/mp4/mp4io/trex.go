package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const TREX = Tag(0x74726578)

// TrackExtend is the trex box carrying fragment defaults of one track.
type TrackExtend struct {
	Version               uint8
	Flags                 uint32
	TrackID               uint32
	DefaultSampleDescIdx  uint32
	DefaultSampleDuration uint32
	DefaultSampleSize     uint32
	DefaultSampleFlags    uint32
	AtomPos
}

func (t *TrackExtend) Tag() Tag {
	return TREX
}

func (t *TrackExtend) Len() int {
	return FullHeaderSize + 20
}

func (t *TrackExtend) Marshal(b []byte) (n int) {
	n = putFullHeader(b, TREX, t.Len(), t.Version, t.Flags)
	for _, v := range [...]uint32{t.TrackID, t.DefaultSampleDescIdx, t.DefaultSampleDuration, t.DefaultSampleSize, t.DefaultSampleFlags} {
		pio.PutU32BE(b[n:], v)
		n += 4
	}
	return
}

func (t *TrackExtend) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	for _, dst := range [...]*uint32{&t.TrackID, &t.DefaultSampleDescIdx, &t.DefaultSampleDuration, &t.DefaultSampleSize, &t.DefaultSampleFlags} {
		if *dst, err = r.ReadU32(); err != nil {
			return 0, fieldErr("TrackExtend", offset, r, err)
		}
	}
	return len(b), nil
}

func (*TrackExtend) Children() []Atom {
	return nil
}

func (t *TrackExtend) String() string {
	return fmt.Sprintf("track_id=%d default_size=%d default_duration=%d", t.TrackID, t.DefaultSampleSize, t.DefaultSampleDuration)
}
