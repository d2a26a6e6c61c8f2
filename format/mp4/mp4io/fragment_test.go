package mp4io

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackFragRunEntries(t *testing.T) {
	t.Parallel()

	atom, err := parseOne(fullbox("trun", 1, 0xb05, u32(2), u32(120), u32(0x02000000),
		u32(1024), u32(100), u32(0xfffffc00), u32(1024), u32(200), u32(512)))
	require.NoError(t, err)

	trun := atom.(*TrackFragRun)
	require.Equal(t, int32(120), trun.DataOffset)
	require.Equal(t, uint32(0x02000000), trun.FirstSampleFlags)
	require.Equal(t, []TrackFragRunEntry{
		{Duration: 1024, Size: 100, Cts: -1024},
		{Duration: 1024, Size: 200, Cts: 512},
	}, trun.Entries)

	require.Equal(t, uint32(0x02000000), trun.SampleFlags(0, nil, nil))
	require.Equal(t, uint32(0), trun.SampleFlags(1, nil, nil))
}

func TestTrackFragRunDefaults(t *testing.T) {
	t.Parallel()

	trun := &TrackFragRun{Entries: make([]TrackFragRunEntry, 2)}
	tfhd := &TrackFragHeader{
		Flags:           TFHDDefaultSize | TFHDDefaultFlags,
		DefaultSize:     300,
		DefaultFlags:    SampleNonKeyframe,
		DefaultDuration: 7,
	}
	trex := &TrackExtend{DefaultSampleDuration: 1024, DefaultSampleSize: 50, DefaultSampleFlags: SampleNoDependencies}

	tests := []struct {
		name     string
		tfhd     *TrackFragHeader
		trex     *TrackExtend
		size     uint32
		duration uint32
		flags    uint32
	}{
		{"tfhd_then_trex", tfhd, trex, 300, 1024, SampleNonKeyframe},
		{"trex_only", nil, trex, 50, 1024, SampleNoDependencies},
		{"tfhd_without_trex", tfhd, nil, 300, 0, SampleNonKeyframe},
		{"nothing", nil, nil, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.size, trun.SampleSize(1, tt.tfhd, tt.trex))
			require.Equal(t, tt.duration, trun.SampleDuration(1, tt.tfhd, tt.trex))
			require.Equal(t, tt.flags, trun.SampleFlags(1, tt.tfhd, tt.trex))
		})
	}
}

func TestTrackFragRunLen(t *testing.T) {
	t.Parallel()

	trun := &TrackFragRun{
		Flags:   TRUNDataOffset | TRUNSampleSize | TRUNSampleFlags,
		Entries: []TrackFragRunEntry{{Size: 1, Flags: 2}, {Size: 3, Flags: 4}},
	}
	require.Equal(t, FullHeaderSize+4+4+2*8, trun.Len())

	trun.DataOffset = -8
	b := MarshalAtom(trun)
	require.Equal(t, fullbox("trun", 0, 0x601, u32(2), u32(0xfffffff8), u32(1), u32(2), u32(3), u32(4)), b)
}

func TestTrackFragHeaderFlags(t *testing.T) {
	t.Parallel()

	tfhd := &TrackFragHeader{Flags: TFHDDurationIsEmpty | TFHDDefaultBaseIsMOOF, TrackID: 3}
	require.Equal(t, FullHeaderSize+4, tfhd.Len())
	require.Equal(t, fullbox("tfhd", 0, 0x30000, u32(3)), MarshalAtom(tfhd))

	atom, err := parseOne(fullbox("tfhd", 0, 0x39, u32(1), u64(4096), u32(1024), u32(300), u32(0x01010000)))
	require.NoError(t, err)
	parsed := atom.(*TrackFragHeader)
	require.Equal(t, uint64(4096), parsed.BaseDataOffset)
	require.Equal(t, uint32(1024), parsed.DefaultDuration)
	require.Equal(t, uint32(300), parsed.DefaultSize)
	require.Equal(t, SampleNonKeyframe, parsed.DefaultFlags)
}

func TestMovieFragmentTree(t *testing.T) {
	t.Parallel()

	moof := box("moof",
		fullbox("mfhd", 0, 0, u32(1)),
		box("traf",
			fullbox("tfhd", 0, 0x20000, u32(1)),
			fullbox("tfdt", 1, 0, u64(2048)),
			fullbox("trun", 0, 0x201, u32(2), u32(100), u32(10), u32(20)),
			fullbox("trun", 0, 0x201, u32(1), u32(130), u32(5)),
		),
	)
	mvex := box("mvex", fullbox("trex", 0, 0, u32(1), u32(1), u32(1024), u32(0), u32(0)))

	atoms, err := ReadAtoms(join(box("moov", mvex), moof), 0)
	require.NoError(t, err)

	mv := atoms[0].(*Movie)
	trex := mv.Extend().TrackExtend(1)
	require.NotNil(t, trex)
	require.Equal(t, uint32(1024), trex.DefaultSampleDuration)
	require.Nil(t, mv.Extend().TrackExtend(2))

	mf := atoms[1].(*MovieFrag)
	require.Equal(t, uint32(1), mf.Header().Seqnum)
	trafs := mf.Tracks()
	require.Len(t, trafs, 1)
	require.Equal(t, uint32(1), trafs[0].Header().TrackID)
	require.Equal(t, uint64(2048), trafs[0].DecodeTime().Time)
	runs := trafs[0].Runs()
	require.Len(t, runs, 2)
	require.Equal(t, int32(130), runs[1].DataOffset)
	require.Equal(t, uint32(1024), runs[0].SampleDuration(0, trafs[0].Header(), trex))
}
