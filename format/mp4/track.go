package mp4

import (
	"errors"
	"fmt"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
)

var ErrNoSampleTable = errors.New("mp4: track has no sample table")

// Track is a track read from a parsed file. Sample data aliases the file's buffers.
type Track struct {
	trak    *mp4io.Track
	samples *SampleList

	stts []mp4io.TimeToSampleEntry
	ctts []mp4io.CompositionOffsetEntry
	stss []uint32
	meta gomp4.TrackMetaData
}

// NewTrack builds the Track of trak, one of the trak boxes found in atoms.
// Samples stored in movie fragments are appended after the ones of the sample table.
func NewTrack(atoms []mp4io.Atom, trak *mp4io.Track) (*Track, error) {
	stbl := trak.SampleTable()
	if stbl == nil || stbl.SampleDesc() == nil {
		return nil, ErrNoSampleTable
	}
	samples, err := NewSampleList(atoms, trak)
	if err != nil {
		return nil, err
	}

	t := &Track{trak: trak, samples: samples}
	t.fillMetaData()
	if err = t.fillTiming(atoms); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Track) fillMetaData() {
	if hdr := t.trak.Header(); hdr != nil {
		t.meta.TrackID = hdr.TrackID
		t.meta.Width = hdr.TrackWidth
		t.meta.Height = hdr.TrackHeight
		t.meta.Volume = hdr.Volume
		t.meta.Layer = hdr.Layer
		t.meta.Group = hdr.AlternateGroup
	}
	if mdhd := t.trak.Media().Header(); mdhd != nil {
		t.meta.Timescale = mdhd.TimeScale
		t.meta.Language = mdhd.Language
		t.meta.CreationTime = mdhd.CreateTime
		t.meta.ModificationTime = mdhd.ModifyTime
	}
}

// fragmentSamples collects the timing of every fragment sample of the track.
func (t *Track) fragmentSamples(atoms []mp4io.Atom) (durations []uint32, cts []int32, sync []bool, hasCts bool) {
	trackID := t.meta.TrackID
	var trex *mp4io.TrackExtend
	for _, atom := range atoms {
		if mv, ok := atom.(*mp4io.Movie); ok {
			trex = mv.Extend().TrackExtend(trackID)
		}
	}
	for _, atom := range atoms {
		moof, ok := atom.(*mp4io.MovieFrag)
		if !ok {
			continue
		}
		for _, traf := range moof.Tracks() {
			tfhd := traf.Header()
			if tfhd == nil || tfhd.TrackID != trackID {
				continue
			}
			for _, trun := range traf.Runs() {
				hasCts = hasCts || trun.Flags&mp4io.TRUNSampleCTS != 0
				for i, e := range trun.Entries {
					durations = append(durations, trun.SampleDuration(i, tfhd, trex))
					cts = append(cts, e.Cts)
					sync = append(sync, trun.SampleFlags(i, tfhd, trex)&mp4io.SampleIsNonSync == 0)
				}
			}
		}
	}
	return
}

func (t *Track) fillTiming(atoms []mp4io.Atom) error {
	stbl := t.trak.SampleTable()
	if stts := stbl.TimeToSample(); stts != nil {
		t.stts = stts.Entries
	}
	if ctts := stbl.CompositionOffset(); ctts != nil {
		t.ctts = ctts.Entries
	}
	// an empty stss is treated like a missing one
	if stss := stbl.SyncSample(); stss != nil && len(stss.Entries) > 0 {
		t.stss = stss.Entries
	}

	durations, cts, sync, hasCts := t.fragmentSamples(atoms)
	if len(durations) == 0 {
		return nil
	}

	// fragment samples follow the classic ones
	limit := t.samples.Len() - len(durations)
	classic, err := mp4io.BlowupTimeToSamples(t.stts, limit)
	if err != nil {
		return err
	}
	t.stts = mp4io.CompactTimeToSamples(append(classic, durations...))

	if hasCts || t.ctts != nil {
		var offsets []int32
		if offsets, err = mp4io.BlowupCompositionOffsets(t.ctts, limit); err != nil {
			return err
		}
		offsets = append(offsets, make([]int32, max(len(classic)-len(offsets), 0))...)
		if !hasCts {
			cts = make([]int32, len(durations))
		}
		t.ctts = mp4io.CompactCompositionOffsets(append(offsets, cts...))
	}

	allSync := t.stss == nil
	for _, s := range sync {
		allSync = allSync && s
	}
	if allSync {
		return nil
	}
	if t.stss == nil {
		t.stss = make([]uint32, len(classic))
		for i := range t.stss {
			t.stss[i] = uint32(i + 1) //nolint:gosec // sample numbers fit uint32
		}
	}
	for i, s := range sync {
		if s {
			t.stss = append(t.stss, uint32(len(classic)+i+1)) //nolint:gosec // sample numbers fit uint32
		}
	}
	return nil
}

func (t *Track) String() string {
	return fmt.Sprintf("MP4_TRACK_%d", t.meta.TrackID)
}

// Box returns the trak box the track was read from.
func (t *Track) Box() *mp4io.Track {
	return t.trak
}

func (t *Track) Samples() gomp4.Samples {
	return t.samples
}

func (t *Track) SampleList() *SampleList {
	return t.samples
}

func (t *Track) SampleDesc() *mp4io.SampleDesc {
	return t.trak.SampleTable().SampleDesc()
}

func (t *Track) TimeToSamples() []mp4io.TimeToSampleEntry {
	return t.stts
}

func (t *Track) CompositionOffsets() []mp4io.CompositionOffsetEntry {
	return t.ctts
}

func (t *Track) SyncSamples() []uint32 {
	return t.stss
}

func (t *Track) SampleDependencies() []mp4io.SampleDependencyEntry {
	if sdtp := t.trak.SampleTable().SampleDependency(); sdtp != nil {
		return sdtp.Entries
	}
	return nil
}

func (t *Track) SubSampleInfo() *mp4io.SubSampleInfo {
	return t.trak.SampleTable().SubSampleInfo()
}

func (t *Track) MetaData() gomp4.TrackMetaData {
	return t.meta
}

func (t *Track) Handler() string {
	if hdlr := t.trak.Media().Handler(); hdlr != nil {
		return hdlr.HandlerType.String()
	}
	return ""
}

func (t *Track) MediaHeader() mp4io.Atom {
	return t.trak.Media().Info().MediaHeaderBox()
}

var _ gomp4.Track = (*Track)(nil)
