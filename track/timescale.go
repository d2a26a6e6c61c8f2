package track

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/logger"
)

var ErrZeroTimescale = errors.New("track: zero timescale")

// ChangeTimeScale presents src in another timescale. Only the timing tables and
// the reported timescale change.
type ChangeTimeScale struct {
	src       gomp4.Track
	timescale uint32

	stts []mp4io.TimeToSampleEntry
	ctts []mp4io.CompositionOffsetEntry
}

// NewChangeTimeScale rescales src to timescale. Accumulated rounding error of the
// decoding times is only corrected at syncSamples (1-based, ascending); pass
// src.SyncSamples() to correct at the track's own sync points.
func NewChangeTimeScale(src gomp4.Track, timescale uint32, syncSamples []uint32) (*ChangeTimeScale, error) {
	from := src.MetaData().Timescale
	if from == 0 || timescale == 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrZeroTimescale, from, timescale)
	}
	factor := float64(timescale) / float64(from)

	deltas, err := mp4io.BlowupTimeToSamples(src.TimeToSamples(), src.Samples().Len())
	if err != nil {
		return nil, err
	}

	c := &ChangeTimeScale{src: src, timescale: timescale}
	c.stts = mp4io.CompactTimeToSamples(ScaleDecodingTimes(deltas, factor, syncSamples))
	if entries := src.CompositionOffsets(); entries != nil {
		c.ctts = make([]mp4io.CompositionOffsetEntry, len(entries))
		for i, e := range entries {
			c.ctts[i] = mp4io.CompositionOffsetEntry{Count: e.Count, Offset: int32(math.Round(factor * float64(e.Offset)))}
		}
	}

	logger.Debugf(c, "%d -> %d, duration %d -> %d", from, timescale, gomp4.Duration(src), mp4io.TotalDuration(c.stts))
	return c, nil
}

// ScaleDecodingTimes multiplies every delta by factor and rounds it. The
// difference between the exact and the rounded deltas is carried forward and
// folded into the delta of the next sync sample once it reaches a whole unit.
// sync holds ascending 1-based sample numbers; without any, nothing is folded.
func ScaleDecodingTimes(deltas []uint32, factor float64, sync []uint32) []uint32 {
	out := make([]uint32, len(deltas))
	var deviation float64
	for i, d := range deltas {
		scaled := factor * float64(d)
		x := math.Round(scaled)
		deviation += scaled - x
		if _, found := slices.BinarySearch(sync, uint32(i+1)); found && math.Abs(deviation) >= 1 { //nolint:gosec // sample numbers fit uint32
			fold := math.Round(deviation)
			x += fold
			deviation -= fold
		}
		if x < 0 {
			deviation += x
			x = 0
		}
		out[i] = uint32(x)
	}
	return out
}

func (c *ChangeTimeScale) String() string {
	return "TIMESCALE_TRACK"
}

func (c *ChangeTimeScale) Samples() gomp4.Samples {
	return c.src.Samples()
}

func (c *ChangeTimeScale) SampleDesc() *mp4io.SampleDesc {
	return c.src.SampleDesc()
}

func (c *ChangeTimeScale) TimeToSamples() []mp4io.TimeToSampleEntry {
	return c.stts
}

func (c *ChangeTimeScale) CompositionOffsets() []mp4io.CompositionOffsetEntry {
	return c.ctts
}

func (c *ChangeTimeScale) SyncSamples() []uint32 {
	return c.src.SyncSamples()
}

func (c *ChangeTimeScale) SampleDependencies() []mp4io.SampleDependencyEntry {
	return c.src.SampleDependencies()
}

func (c *ChangeTimeScale) SubSampleInfo() *mp4io.SubSampleInfo {
	return c.src.SubSampleInfo()
}

func (c *ChangeTimeScale) MetaData() gomp4.TrackMetaData {
	meta := c.src.MetaData()
	meta.Timescale = c.timescale
	return meta
}

func (c *ChangeTimeScale) Handler() string {
	return c.src.Handler()
}

func (c *ChangeTimeScale) MediaHeader() mp4io.Atom {
	return c.src.MediaHeader()
}

var _ gomp4.Track = (*ChangeTimeScale)(nil)
