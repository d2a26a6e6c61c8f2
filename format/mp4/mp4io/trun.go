package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	TRUN                 = Tag(0x7472756e)
	TRUNDataOffset       = 0x01
	TRUNFirstSampleFlags = 0x04
	TRUNSampleDuration   = 0x100
	TRUNSampleSize       = 0x200
	TRUNSampleFlags      = 0x400
	TRUNSampleCTS        = 0x800
)

// TrackFragRunEntry holds the per-sample fields of a trun. Only the fields
// selected by the run's flags are stored in the box.
type TrackFragRunEntry struct {
	Duration uint32
	Size     uint32
	Flags    uint32
	Cts      int32 // unsigned in version 0 boxes
}

// TrackFragRun is the trun box.
type TrackFragRun struct {
	Version          uint8
	Flags            uint32
	DataOffset       int32
	FirstSampleFlags uint32
	Entries          []TrackFragRunEntry
	AtomPos
}

func (t *TrackFragRun) Tag() Tag {
	return TRUN
}

func (t *TrackFragRun) entryLen() (n int) {
	for _, f := range [...]uint32{TRUNSampleDuration, TRUNSampleSize, TRUNSampleFlags, TRUNSampleCTS} {
		if t.Flags&f != 0 {
			n += 4
		}
	}
	return
}

func (t *TrackFragRun) Len() int {
	n := FullHeaderSize + 4
	if t.Flags&TRUNDataOffset != 0 {
		n += 4
	}
	if t.Flags&TRUNFirstSampleFlags != 0 {
		n += 4
	}
	return n + t.entryLen()*len(t.Entries)
}

func (t *TrackFragRun) Marshal(b []byte) (n int) {
	n = putFullHeader(b, TRUN, t.Len(), t.Version, t.Flags)
	pio.PutU32BE(b[n:], uint32(len(t.Entries)))
	n += 4
	if t.Flags&TRUNDataOffset != 0 {
		pio.PutI32BE(b[n:], t.DataOffset)
		n += 4
	}
	if t.Flags&TRUNFirstSampleFlags != 0 {
		pio.PutU32BE(b[n:], t.FirstSampleFlags)
		n += 4
	}
	for _, e := range t.Entries {
		if t.Flags&TRUNSampleDuration != 0 {
			pio.PutU32BE(b[n:], e.Duration)
			n += 4
		}
		if t.Flags&TRUNSampleSize != 0 {
			pio.PutU32BE(b[n:], e.Size)
			n += 4
		}
		if t.Flags&TRUNSampleFlags != 0 {
			pio.PutU32BE(b[n:], e.Flags)
			n += 4
		}
		if t.Flags&TRUNSampleCTS != 0 {
			pio.PutI32BE(b[n:], e.Cts)
			n += 4
		}
	}
	return
}

func (t *TrackFragRun) Unmarshal(b []byte, offset int) (n int, err error) {
	t.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, t.Version, t.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var sampleCount uint32
	if sampleCount, err = r.ReadU32(); err != nil {
		return 0, fieldErr("SampleCount", offset, r, err)
	}
	if t.Flags&TRUNDataOffset != 0 {
		var v uint32
		if v, err = r.ReadU32(); err != nil {
			return 0, fieldErr("DataOffset", offset, r, err)
		}
		t.DataOffset = int32(v)
	}
	if t.Flags&TRUNFirstSampleFlags != 0 {
		if t.FirstSampleFlags, err = r.ReadU32(); err != nil {
			return 0, fieldErr("FirstSampleFlags", offset, r, err)
		}
	}
	if uint64(sampleCount)*uint64(t.entryLen()) > uint64(r.Remaining()) {
		return 0, fieldErr("Entries", offset, r, pio.ErrUnexpectedEndOfData)
	}
	t.Entries = make([]TrackFragRunEntry, sampleCount)
	for i := range t.Entries {
		e := &t.Entries[i]
		if t.Flags&TRUNSampleDuration != 0 {
			e.Duration, _ = r.ReadU32()
		}
		if t.Flags&TRUNSampleSize != 0 {
			e.Size, _ = r.ReadU32()
		}
		if t.Flags&TRUNSampleFlags != 0 {
			e.Flags, _ = r.ReadU32()
		}
		if t.Flags&TRUNSampleCTS != 0 {
			v, _ := r.ReadU32()
			e.Cts = int32(v)
		}
	}
	return len(b), nil
}

func (*TrackFragRun) Children() []Atom {
	return nil
}

func (t *TrackFragRun) String() string {
	return fmt.Sprintf("samples=%d data_offset=%d", len(t.Entries), t.DataOffset)
}

// SampleSize resolves the size of sample i, falling back to the tfhd and trex defaults.
func (t *TrackFragRun) SampleSize(i int, tfhd *TrackFragHeader, trex *TrackExtend) uint32 {
	switch {
	case t.Flags&TRUNSampleSize != 0:
		return t.Entries[i].Size
	case tfhd != nil && tfhd.Flags&TFHDDefaultSize != 0:
		return tfhd.DefaultSize
	case trex != nil:
		return trex.DefaultSampleSize
	}
	return 0
}

// SampleDuration resolves the duration of sample i like SampleSize.
func (t *TrackFragRun) SampleDuration(i int, tfhd *TrackFragHeader, trex *TrackExtend) uint32 {
	switch {
	case t.Flags&TRUNSampleDuration != 0:
		return t.Entries[i].Duration
	case tfhd != nil && tfhd.Flags&TFHDDefaultDuration != 0:
		return tfhd.DefaultDuration
	case trex != nil:
		return trex.DefaultSampleDuration
	}
	return 0
}

// SampleFlags resolves the flags of sample i; first_sample_flags overrides the first sample.
func (t *TrackFragRun) SampleFlags(i int, tfhd *TrackFragHeader, trex *TrackExtend) uint32 {
	switch {
	case i == 0 && t.Flags&TRUNFirstSampleFlags != 0:
		return t.FirstSampleFlags
	case t.Flags&TRUNSampleFlags != 0:
		return t.Entries[i].Flags
	case tfhd != nil && tfhd.Flags&TFHDDefaultFlags != 0:
		return tfhd.DefaultFlags
	case trex != nil:
		return trex.DefaultSampleFlags
	}
	return 0
}
