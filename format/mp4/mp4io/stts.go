package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const STTS = Tag(0x73747473)

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

const LenTimeToSampleEntry = 8

// TimeToSample is the stts box.
type TimeToSample struct {
	Version uint8
	Flags   uint32
	Entries []TimeToSampleEntry
	AtomPos
}

func (t *TimeToSample) Tag() Tag {
	return STTS
}

func (t *TimeToSample) Len() int {
	return FullHeaderSize + 4 + LenTimeToSampleEntry*len(t.Entries)
}

func (t *TimeToSample) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STTS, t.Len(), t.Version, t.Flags)
	pio.PutU32BE(b[n:], uint32(len(t.Entries)))
	n += 4
	for _, e := range t.Entries {
		pio.PutU32BE(b[n:], e.Count)
		pio.PutU32BE(b[n+4:], e.Duration)
		n += LenTimeToSampleEntry
	}
	return
}

func (t *TimeToSample) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, LenTimeToSampleEntry, offset); err != nil {
		return
	}
	t.Entries = make([]TimeToSampleEntry, count)
	for i := range t.Entries {
		t.Entries[i].Count, _ = r.ReadU32()
		t.Entries[i].Duration, _ = r.ReadU32()
	}
	return len(b), nil
}

func (*TimeToSample) Children() []Atom {
	return nil
}

func (t *TimeToSample) String() string {
	return fmt.Sprintf("entries=%d", len(t.Entries))
}
