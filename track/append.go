// Package track holds transforms that build new tracks out of existing ones.
package track

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/logger"
)

var ErrIncompatibleTracks = errors.New("track: incompatible tracks")

// ConcatSamples presents several sample lists as one.
type ConcatSamples struct {
	parts  []gomp4.Samples
	starts []int // first global index of every part
	total  int
}

func NewConcatSamples(parts ...gomp4.Samples) *ConcatSamples {
	c := &ConcatSamples{parts: parts, starts: make([]int, len(parts))}
	for i, p := range parts {
		c.starts[i] = c.total
		c.total += p.Len()
	}
	return c
}

// locate maps a global sample index to its part and the index inside it.
func (c *ConcatSamples) locate(i int) (gomp4.Samples, int) {
	part := sort.Search(len(c.starts), func(j int) bool { return c.starts[j] > i }) - 1
	return c.parts[part], i - c.starts[part]
}

func (c *ConcatSamples) Len() int {
	return c.total
}

func (c *ConcatSamples) Size(i int) int {
	if i < 0 || i >= c.total {
		return 0
	}
	p, j := c.locate(i)
	return p.Size(j)
}

func (c *ConcatSamples) Get(i int) ([]byte, error) {
	if i < 0 || i >= c.total {
		return nil, fmt.Errorf("%w: %d of %d", gomp4.ErrSampleOutOfRange, i, c.total)
	}
	p, j := c.locate(i)
	return p.Get(j)
}

// Append plays tracks one after another. Every track must carry the same
// sample description; metadata, handler and media header come from the first.
type Append struct {
	tracks  []gomp4.Track
	samples *ConcatSamples

	stts []mp4io.TimeToSampleEntry
	ctts []mp4io.CompositionOffsetEntry
	stss []uint32
	sdtp []mp4io.SampleDependencyEntry
	subs *mp4io.SubSampleInfo
}

func NewAppend(tracks ...gomp4.Track) (*Append, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", ErrIncompatibleTracks)
	}
	if err := checkSampleDescs(tracks); err != nil {
		return nil, err
	}

	a := &Append{tracks: tracks}
	parts := make([]gomp4.Samples, len(tracks))
	for i, t := range tracks {
		parts[i] = t.Samples()
	}
	a.samples = NewConcatSamples(parts...)

	if err := a.appendTimeToSamples(); err != nil {
		return nil, err
	}
	if err := a.appendCompositionOffsets(); err != nil {
		return nil, err
	}
	a.appendSyncSamples()
	a.appendDependencies()
	a.pickSubSamples()

	logger.Debugf(a, "appended %d tracks, %d samples", len(tracks), a.samples.Len())
	return a, nil
}

func checkSampleDescs(tracks []gomp4.Track) error {
	if tracks[0].SampleDesc() == nil {
		return fmt.Errorf("%w: track 1 has no sample description", ErrIncompatibleTracks)
	}
	first := mp4io.MarshalAtom(tracks[0].SampleDesc())
	for i, t := range tracks[1:] {
		if t.SampleDesc() == nil || !bytes.Equal(first, mp4io.MarshalAtom(t.SampleDesc())) {
			return fmt.Errorf("%w: sample description of track %d differs from track 1", ErrIncompatibleTracks, i+2)
		}
	}
	return nil
}

func (a *Append) appendTimeToSamples() error {
	var deltas []uint32
	for i, t := range a.tracks {
		own, err := mp4io.BlowupTimeToSamples(t.TimeToSamples(), t.Samples().Len())
		if err != nil {
			return fmt.Errorf("track %d: %w", i+1, err)
		}
		deltas = append(deltas, own...)
	}
	a.stts = mp4io.CompactTimeToSamples(deltas)
	return nil
}

// appendCompositionOffsets gives tracks without ctts zero offsets once any track has them.
func (a *Append) appendCompositionOffsets() error {
	present := false
	for _, t := range a.tracks {
		present = present || t.CompositionOffsets() != nil
	}
	if !present {
		return nil
	}
	var offsets []int32
	for i, t := range a.tracks {
		n := t.Samples().Len()
		own, err := mp4io.BlowupCompositionOffsets(t.CompositionOffsets(), n)
		if err != nil {
			return fmt.Errorf("track %d: %w", i+1, err)
		}
		offsets = append(offsets, own...)
		offsets = append(offsets, make([]int32, n-len(own))...)
	}
	a.ctts = mp4io.CompactCompositionOffsets(offsets)
	return nil
}

// appendSyncSamples shifts every track's sync numbers by the samples before it.
// A track without stss contributes all of its samples unless every track lacks one.
func (a *Append) appendSyncSamples() {
	allSync := true
	for _, t := range a.tracks {
		allSync = allSync && t.SyncSamples() == nil
	}
	if allSync {
		return
	}
	a.stss = []uint32{}
	var base uint32
	for _, t := range a.tracks {
		n := uint32(t.Samples().Len()) //nolint:gosec // sample count fits uint32
		if sync := t.SyncSamples(); sync != nil {
			for _, s := range sync {
				a.stss = append(a.stss, base+s)
			}
		} else {
			for s := range n {
				a.stss = append(a.stss, base+s+1)
			}
		}
		base += n
	}
}

func (a *Append) appendDependencies() {
	for _, t := range a.tracks {
		if t.SampleDependencies() == nil {
			return
		}
	}
	for _, t := range a.tracks {
		a.sdtp = append(a.sdtp, t.SampleDependencies()...)
	}
}

func (a *Append) pickSubSamples() {
	carriers := 0
	for _, t := range a.tracks {
		if t.SubSampleInfo() != nil {
			carriers++
		}
	}
	switch {
	case carriers == 1 && a.tracks[0].SubSampleInfo() != nil:
		a.subs = a.tracks[0].SubSampleInfo()
	case carriers > 0:
		logger.Warningf(a, "dropping sub-sample information of %d tracks", carriers)
	}
}

func (a *Append) String() string {
	return "APPEND_TRACK"
}

func (a *Append) Samples() gomp4.Samples {
	return a.samples
}

func (a *Append) SampleDesc() *mp4io.SampleDesc {
	return a.tracks[0].SampleDesc()
}

func (a *Append) TimeToSamples() []mp4io.TimeToSampleEntry {
	return a.stts
}

func (a *Append) CompositionOffsets() []mp4io.CompositionOffsetEntry {
	return a.ctts
}

func (a *Append) SyncSamples() []uint32 {
	return a.stss
}

func (a *Append) SampleDependencies() []mp4io.SampleDependencyEntry {
	return a.sdtp
}

func (a *Append) SubSampleInfo() *mp4io.SubSampleInfo {
	return a.subs
}

func (a *Append) MetaData() gomp4.TrackMetaData {
	return a.tracks[0].MetaData()
}

func (a *Append) Handler() string {
	return a.tracks[0].Handler()
}

func (a *Append) MediaHeader() mp4io.Atom {
	return a.tracks[0].MediaHeader()
}

var _ gomp4.Track = (*Append)(nil)
