package mp4

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
)

func TestSampleList_UniformSizes(t *testing.T) {
	t.Parallel()

	// chunks 1-2 hold two samples, chunks 3-4 hold one
	stco := &mp4io.ChunkOffset{Entries: make([]uint32, 4)}
	trak := testTrak(1,
		&mp4io.SampleToChunk{Entries: []mp4io.SampleToChunkEntry{
			{FirstChunk: 1, SamplesPerChunk: 2, SampleDescID: 1},
			{FirstChunk: 3, SamplesPerChunk: 1, SampleDescID: 1},
		}},
		&mp4io.SampleSize{SampleSize: 4, SampleCount: 6},
		stco,
	)
	data := pattern(24, 0)
	atoms, start := classicFile(testMovie(trak), data, false)
	for i, rel := range []int64{0, 8, 16, 20} {
		stco.Entries[i] = uint32(start + rel)
	}

	l, err := NewSampleList(atoms, trak)
	require.NoError(t, err)
	require.Equal(t, 6, l.Len())
	for i := range 6 {
		require.Equal(t, 4, l.Size(i))
		require.Equal(t, start+int64(4*i), l.Offset(i))
		s, err := l.Get(i)
		require.NoError(t, err)
		require.Equal(t, data[4*i:4*i+4], s)
	}

	_, err = l.Get(6)
	require.ErrorIs(t, err, gomp4.ErrSampleOutOfRange)
	_, err = l.Get(-1)
	require.ErrorIs(t, err, gomp4.ErrSampleOutOfRange)
	require.Zero(t, l.Size(6))
	require.Zero(t, l.Size(-1))
	require.Equal(t, int64(-1), l.Offset(6))

	// lists over boxes built in memory ignore Retain
	require.NoError(t, l.Retain())
	l.Release()
	_, err = l.Get(0)
	require.NoError(t, err)
}

func TestSampleList_ExplicitSizesLargeOffsets(t *testing.T) {
	t.Parallel()

	co64 := &mp4io.ChunkLargeOffset{Entries: make([]uint64, 2)}
	trak := testTrak(1,
		&mp4io.SampleToChunk{Entries: []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 2, SampleDescID: 1}}},
		&mp4io.SampleSize{Entries: []uint32{3, 5, 2, 6}, SampleCount: 4},
		co64,
	)
	data := pattern(16, 100)
	atoms, start := classicFile(testMovie(trak), data, true)
	// second chunk stored first in the mdat
	co64.Entries[0] = uint64(start + 8)
	co64.Entries[1] = uint64(start)

	l, err := NewSampleList(atoms, trak)
	require.NoError(t, err)
	require.Equal(t, 4, l.Len())

	// samples come back in file order
	want := [][]byte{data[0:2], data[2:8], data[8:11], data[11:16]}
	for i, w := range want {
		s, err := l.Get(i)
		require.NoError(t, err)
		require.Equal(t, w, s)
	}
}

func TestSampleList_Errors(t *testing.T) {
	t.Parallel()

	stsc := func() *mp4io.SampleToChunk {
		return &mp4io.SampleToChunk{Entries: []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 1, SampleDescID: 1}}}
	}

	tests := []struct {
		name    string
		stsz    *mp4io.SampleSize
		offsets func(start uint32) []uint32
	}{
		{
			name:    "duplicate_offset",
			stsz:    &mp4io.SampleSize{SampleSize: 4, SampleCount: 2},
			offsets: func(start uint32) []uint32 { return []uint32{start, start} },
		},
		{
			name:    "too_few_sizes",
			stsz:    &mp4io.SampleSize{Entries: []uint32{4}, SampleCount: 1},
			offsets: func(start uint32) []uint32 { return []uint32{start, start + 4} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stco := &mp4io.ChunkOffset{Entries: make([]uint32, 2)}
			trak := testTrak(1, stsc(), tt.stsz, stco)
			atoms, start := classicFile(testMovie(trak), pattern(8, 0), false)
			stco.Entries = tt.offsets(uint32(start))

			_, err := NewSampleList(atoms, trak)
			require.ErrorIs(t, err, mp4io.ErrMalformedBox)
			var perr *mp4io.ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestSampleList_SampleNotInAnyRegion(t *testing.T) {
	t.Parallel()

	stco := &mp4io.ChunkOffset{Entries: make([]uint32, 1)}
	trak := testTrak(1,
		&mp4io.SampleToChunk{Entries: []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 2, SampleDescID: 1}}},
		&mp4io.SampleSize{SampleSize: 6, SampleCount: 2},
		stco,
	)
	atoms, start := classicFile(testMovie(trak), pattern(10, 0), false)
	stco.Entries[0] = uint32(start)

	l, err := NewSampleList(atoms, trak)
	require.NoError(t, err)

	_, err = l.Get(0)
	require.NoError(t, err)

	// the second sample runs past the end of the mdat
	_, err = l.Get(1)
	require.ErrorIs(t, err, ErrSampleNotInAnyRegion)
	var rerr *SampleNotInAnyRegionError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, start+6, rerr.Offset)
	require.Equal(t, uint32(6), rerr.Size)
}

// fragmentedFile holds one empty trak and two fragments for track 1: the first
// without a base data offset and sizes from trex, the second with an explicit
// base and tfhd default sizes. A traf of track 2 is interleaved and ignored.
func fragmentedFile() (atoms []mp4io.Atom, trak *mp4io.Track, first, second []byte) {
	trak = testTrak(1,
		&mp4io.TimeToSample{},
		&mp4io.SampleToChunk{},
		&mp4io.SampleSize{},
		&mp4io.ChunkOffset{},
	)
	mvex := &mp4io.MovieExtend{}
	mvex.Add(&mp4io.TrackExtend{
		TrackID:               1,
		DefaultSampleDescIdx:  1,
		DefaultSampleDuration: 1024,
		DefaultSampleSize:     10,
		DefaultSampleFlags:    mp4io.SampleIsNonSync,
	})
	moov := testMovie(trak)
	moov.Add(mvex)

	ftyp := mp4io.NewFileType()

	// fragment 1: offsets relative to the moof start
	trun1 := &mp4io.TrackFragRun{
		Flags:            mp4io.TRUNDataOffset | mp4io.TRUNFirstSampleFlags | mp4io.TRUNSampleCTS,
		FirstSampleFlags: 0,
		Entries:          []mp4io.TrackFragRunEntry{{Cts: 0}, {Cts: 2048}, {Cts: 1024}},
	}
	traf1 := &mp4io.TrackFrag{}
	traf1.Add(&mp4io.TrackFragHeader{TrackID: 1}, trun1)
	other := &mp4io.TrackFrag{}
	other.Add(
		&mp4io.TrackFragHeader{TrackID: 2, Flags: mp4io.TFHDDefaultSize, DefaultSize: 1},
		&mp4io.TrackFragRun{Entries: make([]mp4io.TrackFragRunEntry, 4)},
	)
	moof1 := &mp4io.MovieFrag{}
	moof1.Add(&mp4io.MovieFragHeader{Seqnum: 1}, other, traf1)
	first = pattern(30, 1)
	mdat1 := &mp4io.MediaData{Data: first}
	trun1.DataOffset = int32(moof1.Len() + mdat1.HeaderLen())

	// fragment 2: explicit base data offset
	tfhd2 := &mp4io.TrackFragHeader{
		TrackID:         1,
		Flags:           mp4io.TFHDBaseDataOffset | mp4io.TFHDDefaultSize | mp4io.TFHDDefaultDuration,
		DefaultSize:     5,
		DefaultDuration: 512,
	}
	traf2 := &mp4io.TrackFrag{}
	traf2.Add(tfhd2, &mp4io.TrackFragRun{Flags: mp4io.TRUNDataOffset, Entries: make([]mp4io.TrackFragRunEntry, 2)})
	moof2 := &mp4io.MovieFrag{}
	moof2.Add(&mp4io.MovieFragHeader{Seqnum: 2}, traf2)
	second = pattern(10, 200)
	mdat2 := &mp4io.MediaData{Data: second}

	atoms = []mp4io.Atom{ftyp, moov, moof1, mdat1, moof2, mdat2}
	var off int
	for _, atom := range atoms[:5] {
		off += atom.Len()
	}
	tfhd2.BaseDataOffset = uint64(off + mdat2.HeaderLen())
	return atoms, trak, first, second
}

func TestSampleList_Fragments(t *testing.T) {
	t.Parallel()

	atoms, trak, first, second := fragmentedFile()
	l, err := NewSampleList(atoms, trak)
	require.NoError(t, err)
	require.Equal(t, 5, l.Len())

	want := [][]byte{first[0:10], first[10:20], first[20:30], second[0:5], second[5:10]}
	for i, w := range want {
		s, err := l.Get(i)
		require.NoError(t, err, "sample %d", i)
		require.Equal(t, w, s, "sample %d", i)
	}
}

func TestRegions(t *testing.T) {
	t.Parallel()

	atoms := []mp4io.Atom{
		mp4io.NewFileType(),
		&mp4io.MediaData{Data: pattern(5, 0)},
		&mp4io.MediaData{Data: pattern(3, 0), LargeSize: true},
	}
	ftypLen := int64(atoms[0].Len())

	regions := Regions(atoms)
	require.Len(t, regions, 2)
	require.Equal(t, ftypLen+8, regions[0].Start)
	require.Equal(t, ftypLen+13, regions[0].End)
	require.Equal(t, ftypLen+13+16, regions[1].Start)
	require.Equal(t, ftypLen+13+16+3, regions[1].End)

	// parsed boxes are located by where they were read, not by their length
	atoms = []mp4io.Atom{
		&mp4io.Dummy{Tag_: mp4io.StringToTag("skip"), AtomPos: mp4io.AtomPos{Offset: 0, Size: 40}},
		&mp4io.MediaData{Data: pattern(3, 0), AtomPos: mp4io.AtomPos{Offset: 40, Size: 11}},
		&mp4io.MediaData{Data: pattern(2, 0)},
	}
	regions = Regions(atoms)
	require.Len(t, regions, 2)
	require.Equal(t, int64(48), regions[0].Start)
	require.Equal(t, int64(51), regions[0].End)
	require.Equal(t, int64(59), regions[1].Start)
	require.Equal(t, int64(61), regions[1].End)
}
