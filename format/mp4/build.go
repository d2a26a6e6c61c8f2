package mp4

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/logger"
)

// builder lays out ftyp, moov and a single mdat holding the samples of every
// track back to back, one chunk per track.
type builder struct {
	opts   BuildOptions
	tracks []gomp4.Track

	ftyp *mp4io.FileType
	moov *mp4io.Movie
	mdat *mp4io.MediaData
	// chunk offset boxes, filled once the moov length is known
	stco []*mp4io.ChunkOffset
	co64 []*mp4io.ChunkLargeOffset
}

// Build returns the boxes of a non-fragmented file holding tracks.
func Build(tracks ...gomp4.Track) ([]mp4io.Atom, error) {
	return BuildWithOptions(BuildOptions{}, tracks...)
}

// BuildWithOptions is Build with control over the file level boxes.
func BuildWithOptions(opts BuildOptions, tracks ...gomp4.Track) ([]mp4io.Atom, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("mp4: no tracks to build")
	}
	if opts.CreationTime.IsZero() {
		opts.CreationTime = time.Now()
	}
	opts.CreationTime = opts.CreationTime.UTC().Truncate(time.Second)

	b := &builder{opts: opts, tracks: tracks}
	b.ftyp = b.fileType()
	if err := b.mediaData(); err != nil {
		return nil, err
	}
	if err := b.movie(false); err != nil {
		return nil, err
	}
	if b.end() > math.MaxUint32 {
		if err := b.movie(true); err != nil {
			return nil, err
		}
	}

	b.fixChunkOffsets()
	logger.Debugf(b, "built %d tracks, %d bytes of media data", len(tracks), len(b.mdat.Data))
	return []mp4io.Atom{b.ftyp, b.moov, b.mdat}, nil
}

// Write builds the file holding tracks and writes it to w.
func Write(w io.Writer, tracks ...gomp4.Track) error {
	atoms, err := Build(tracks...)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(w, writeBufSize)
	if _, err = mp4io.WriteAtoms(bw, atoms...); err != nil {
		return err
	}
	return bw.Flush()
}

func (b *builder) movie(large bool) error {
	b.stco, b.co64 = nil, nil
	b.moov = &mp4io.Movie{}
	mvhd := mp4io.NewMovieHeader()
	mvhd.CreateTime, mvhd.ModifyTime = b.opts.CreationTime, b.opts.CreationTime
	mvhd.NextTrackID = uint32(len(b.tracks) + 1) //nolint:gosec // track count
	b.moov.Add(mvhd)
	for i, t := range b.tracks {
		trak, err := b.track(i, t, large)
		if err != nil {
			return err
		}
		mvhd.Duration = max(mvhd.Duration, trak.Header().Duration)
		b.moov.Add(trak)
	}
	if mvhd.Duration > math.MaxUint32 {
		mvhd.Version = 1
	}
	return nil
}

// end returns the file length.
func (b *builder) end() uint64 {
	return uint64(b.ftyp.Len() + b.moov.Len() + b.mdat.Len()) //nolint:gosec // lengths are positive
}

func (b *builder) String() string {
	return "MP4_BUILDER"
}

func (b *builder) fileType() *mp4io.FileType {
	ftyp := mp4io.NewFileType()
	if b.opts.MajorBrand != "" {
		ftyp.MajorBrand = mp4io.StringToTag(b.opts.MajorBrand)
	}
	if len(b.opts.CompatibleBrands) > 0 {
		ftyp.CompatibleBrands = ftyp.CompatibleBrands[:0]
		for _, brand := range b.opts.CompatibleBrands {
			ftyp.CompatibleBrands = append(ftyp.CompatibleBrands, mp4io.StringToTag(brand))
		}
	}
	return ftyp
}

func (b *builder) mediaData() error {
	total := 0
	for _, t := range b.tracks {
		samples := t.Samples()
		for i := range samples.Len() {
			total += samples.Size(i)
		}
	}
	data := make([]byte, 0, total)
	for ti, t := range b.tracks {
		samples := t.Samples()
		for i := range samples.Len() {
			s, err := samples.Get(i)
			if err != nil {
				return fmt.Errorf("mp4: track %d sample %d: %w", ti+1, i, err)
			}
			data = append(data, s...)
		}
	}
	b.mdat = &mp4io.MediaData{Data: data}
	return nil
}

func (b *builder) track(i int, t gomp4.Track, large bool) (*mp4io.Track, error) {
	meta := t.MetaData()
	if meta.Timescale == 0 {
		return nil, fmt.Errorf("mp4: track %d has no timescale", i+1)
	}
	if t.SampleDesc() == nil {
		return nil, fmt.Errorf("mp4: track %d has no sample description", i+1)
	}
	created := meta.CreationTime
	if created.IsZero() {
		created = b.opts.CreationTime
	}
	modified := meta.ModificationTime
	if modified.IsZero() {
		modified = created
	}
	duration := gomp4.Duration(t)

	tkhd := &mp4io.TrackHeader{
		Flags:          mp4io.TKHDEnabled | mp4io.TKHDInMovie,
		CreateTime:     created,
		ModifyTime:     modified,
		TrackID:        uint32(i + 1), //nolint:gosec // track count
		Duration:       duration * movieTimeScale / uint64(meta.Timescale),
		Layer:          meta.Layer,
		AlternateGroup: meta.Group,
		Volume:         meta.Volume,
		Matrix:         mp4io.IdentityMatrix,
		TrackWidth:     meta.Width,
		TrackHeight:    meta.Height,
	}
	if tkhd.Duration > math.MaxUint32 {
		tkhd.Version = 1
	}

	mdhd := &mp4io.MediaHeader{
		CreateTime: created,
		ModifyTime: modified,
		TimeScale:  meta.Timescale,
		Duration:   duration,
		Language:   meta.Language,
	}
	if mdhd.Language == "" {
		mdhd.Language = "und"
	}
	if duration > math.MaxUint32 {
		mdhd.Version = 1
	}

	name := videoHandlerName
	if t.Handler() == mp4io.HandlerSound {
		name = soundHandlerName
	}

	minf := &mp4io.MediaInfo{}
	if mh := t.MediaHeader(); mh != nil {
		minf.Add(mh)
	}
	stbl, err := b.sampleTable(t, large)
	if err != nil {
		return nil, err
	}
	minf.Add(mp4io.NewSelfContainedDataInfo(), stbl)

	mdia := &mp4io.Media{}
	mdia.Add(mdhd, mp4io.NewHandlerRefer(t.Handler(), name), minf)

	trak := &mp4io.Track{}
	trak.Add(tkhd, mdia)
	return trak, nil
}

func (b *builder) sampleTable(t gomp4.Track, large bool) (*mp4io.SampleTable, error) {
	samples := t.Samples()
	n := samples.Len()

	deltas, err := mp4io.BlowupTimeToSamples(t.TimeToSamples(), n)
	if err != nil {
		return nil, err
	}
	stbl := &mp4io.SampleTable{}
	stbl.Add(t.SampleDesc())
	stbl.Add(&mp4io.TimeToSample{Entries: mp4io.CompactTimeToSamples(deltas)})
	if entries := t.CompositionOffsets(); entries != nil {
		var offsets []int32
		if offsets, err = mp4io.BlowupCompositionOffsets(entries, n); err != nil {
			return nil, err
		}
		ctts := &mp4io.CompositionOffset{Entries: mp4io.CompactCompositionOffsets(offsets)}
		for _, e := range ctts.Entries {
			if e.Offset < 0 {
				ctts.Version = 1
			}
		}
		stbl.Add(ctts)
	}
	if sync := t.SyncSamples(); sync != nil {
		stbl.Add(&mp4io.SyncSample{Entries: sync})
	}
	if sdtp := t.SampleDependencies(); sdtp != nil {
		stbl.Add(&mp4io.SampleDependency{Entries: sdtp})
	}
	if subs := t.SubSampleInfo(); subs != nil {
		stbl.Add(subs)
	}

	chunks := min(n, 1)
	stsc := &mp4io.SampleToChunk{}
	if chunks > 0 {
		stsc.Entries = []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: uint32(n), SampleDescID: 1}} //nolint:gosec // sample count fits uint32
	}
	stbl.Add(stsc, sampleSizes(samples))

	if large {
		co := &mp4io.ChunkLargeOffset{Entries: make([]uint64, chunks)}
		b.co64 = append(b.co64, co)
		stbl.Add(co)
	} else {
		co := &mp4io.ChunkOffset{Entries: make([]uint32, chunks)}
		b.stco = append(b.stco, co)
		stbl.Add(co)
	}
	return stbl, nil
}

// sampleSizes returns a uniform stsz when every sample has the same non-zero size.
func sampleSizes(samples gomp4.Samples) *mp4io.SampleSize {
	n := samples.Len()
	stsz := &mp4io.SampleSize{SampleCount: uint32(n)} //nolint:gosec // sample count fits uint32
	uniform := n > 0 && samples.Size(0) > 0
	for i := 1; i < n && uniform; i++ {
		uniform = samples.Size(i) == samples.Size(0)
	}
	if uniform {
		stsz.SampleSize = uint32(samples.Size(0)) //nolint:gosec // sample sizes fit uint32
		return stsz
	}
	stsz.Entries = make([]uint32, n)
	for i := range n {
		stsz.Entries[i] = uint32(samples.Size(i)) //nolint:gosec // sample sizes fit uint32
	}
	return stsz
}

// fixChunkOffsets points the chunk of every track at its first sample now that
// the mdat position is known.
func (b *builder) fixChunkOffsets() {
	off := uint64(b.ftyp.Len()+b.moov.Len()) + uint64(b.mdat.HeaderLen()) //nolint:gosec // lengths are positive
	for i, t := range b.tracks {
		samples := t.Samples()
		if samples.Len() == 0 {
			continue
		}
		if b.co64 != nil {
			b.co64[i].Entries[0] = off
		} else {
			b.stco[i].Entries[0] = uint32(off) //nolint:gosec // small files use stco
		}
		for j := range samples.Len() {
			off += uint64(samples.Size(j)) //nolint:gosec // sample sizes are positive
		}
	}
}
