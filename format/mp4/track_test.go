package mp4

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
)

func TestNewTrack_Classic(t *testing.T) {
	t.Parallel()

	stco := &mp4io.ChunkOffset{Entries: make([]uint32, 1)}
	trak := testTrak(7,
		&mp4io.TimeToSample{Entries: []mp4io.TimeToSampleEntry{{Count: 3, Duration: 1024}}},
		&mp4io.CompositionOffset{Entries: []mp4io.CompositionOffsetEntry{{Count: 3, Offset: 0}}},
		&mp4io.SyncSample{},
		&mp4io.SampleToChunk{Entries: []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 3, SampleDescID: 1}}},
		&mp4io.SampleSize{SampleSize: 2, SampleCount: 3},
		stco,
	)
	trak.Header().Volume = 1
	atoms, start := classicFile(testMovie(trak), pattern(6, 0), false)
	stco.Entries[0] = uint32(start)

	tr, err := NewTrack(atoms, trak)
	require.NoError(t, err)
	require.Same(t, trak, tr.Box())
	require.Equal(t, 3, tr.Samples().Len())
	require.Equal(t, []mp4io.TimeToSampleEntry{{Count: 3, Duration: 1024}}, tr.TimeToSamples())
	require.Equal(t, []mp4io.CompositionOffsetEntry{{Count: 3, Offset: 0}}, tr.CompositionOffsets())
	// an empty stss means every sample is sync
	require.Nil(t, tr.SyncSamples())
	require.Nil(t, tr.SampleDependencies())
	require.Nil(t, tr.SubSampleInfo())

	meta := tr.MetaData()
	require.Equal(t, uint32(7), meta.TrackID)
	require.Equal(t, uint32(48000), meta.Timescale)
	require.Equal(t, "und", meta.Language)
	require.Equal(t, 1.0, meta.Volume)

	require.Equal(t, mp4io.HandlerSound, tr.Handler())
	require.IsType(t, &mp4io.SoundMediaInfo{}, tr.MediaHeader())
	require.Equal(t, gomp4.AAC, gomp4.TrackCodec(tr))
	require.Equal(t, uint64(3*1024), gomp4.Duration(tr))
}

func TestNewTrack_Fragments(t *testing.T) {
	t.Parallel()

	atoms, trak, _, _ := fragmentedFile()
	tr, err := NewTrack(atoms, trak)
	require.NoError(t, err)

	require.Equal(t, 5, tr.Samples().Len())
	require.Equal(t, []mp4io.TimeToSampleEntry{
		{Count: 3, Duration: 1024},
		{Count: 2, Duration: 512},
	}, tr.TimeToSamples())
	require.Equal(t, []mp4io.CompositionOffsetEntry{
		{Count: 1, Offset: 0},
		{Count: 1, Offset: 2048},
		{Count: 1, Offset: 1024},
		{Count: 2, Offset: 0},
	}, tr.CompositionOffsets())
	// only the first sample of the first run is flagged sync
	require.Equal(t, []uint32{1}, tr.SyncSamples())
}

func TestNewTrack_NoSampleTable(t *testing.T) {
	t.Parallel()

	trak := &mp4io.Track{}
	trak.Add(&mp4io.TrackHeader{TrackID: 1}, &mp4io.Media{})
	_, err := NewTrack(nil, trak)
	require.ErrorIs(t, err, ErrNoSampleTable)
}

func TestNewTrack_TimingBeyondSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(stbl *mp4io.SampleTable)
	}{
		{"stts", func(stbl *mp4io.SampleTable) {
			stbl.TimeToSample().Entries = []mp4io.TimeToSampleEntry{{Count: 0xFFFFFFFF, Duration: 1}}
		}},
		{"ctts", func(stbl *mp4io.SampleTable) {
			stbl.Add(&mp4io.CompositionOffset{Entries: []mp4io.CompositionOffsetEntry{{Count: 0xFFFFFFFF}}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			atoms, trak, _, _ := fragmentedFile()
			tt.edit(trak.SampleTable())
			_, err := NewTrack(atoms, trak)
			require.ErrorIs(t, err, mp4io.ErrMalformedBox)
		})
	}
}
