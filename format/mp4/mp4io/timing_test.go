package mp4io

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeToSamplesBlowupCompact(t *testing.T) {
	t.Parallel()

	entries := []TimeToSampleEntry{{Count: 3, Duration: 1024}, {Count: 1, Duration: 512}, {Count: 2, Duration: 1024}}
	deltas, err := BlowupTimeToSamples(entries, 6)
	require.NoError(t, err)
	require.Equal(t, []uint32{1024, 1024, 1024, 512, 1024, 1024}, deltas)
	require.Equal(t, entries, CompactTimeToSamples(deltas))
	require.Equal(t, uint64(3*1024+512+2*1024), TotalDuration(entries))

	deltas, err = BlowupTimeToSamples(nil, 0)
	require.NoError(t, err)
	require.Empty(t, deltas)
	require.Empty(t, CompactTimeToSamples(nil))
}

func TestCompactMergesAdjacentRuns(t *testing.T) {
	t.Parallel()

	split := []TimeToSampleEntry{{Count: 2, Duration: 1024}, {Count: 3, Duration: 1024}}
	deltas, err := BlowupTimeToSamples(split, 5)
	require.NoError(t, err)
	require.Equal(t, []TimeToSampleEntry{{Count: 5, Duration: 1024}}, CompactTimeToSamples(deltas))
}

func TestCompositionOffsetsBlowupCompact(t *testing.T) {
	t.Parallel()

	entries := []CompositionOffsetEntry{{Count: 1, Offset: 0}, {Count: 2, Offset: -512}, {Count: 1, Offset: 1024}}
	offsets, err := BlowupCompositionOffsets(entries, 10)
	require.NoError(t, err)
	require.Equal(t, []int32{0, -512, -512, 1024}, offsets)
	require.Equal(t, entries, CompactCompositionOffsets(offsets))
}

func TestBlowup_CountsBeyondTrack(t *testing.T) {
	t.Parallel()

	_, err := BlowupTimeToSamples([]TimeToSampleEntry{{Count: 0xFFFFFFFF, Duration: 1}}, 10)
	require.ErrorIs(t, err, ErrMalformedBox)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, STTS, perr.Tag)

	// counts summing past uint32 are caught as well
	_, err = BlowupTimeToSamples([]TimeToSampleEntry{{Count: 0xFFFFFFFF}, {Count: 0xFFFFFFFF}}, 1<<31)
	require.ErrorIs(t, err, ErrMalformedBox)

	_, err = BlowupCompositionOffsets([]CompositionOffsetEntry{{Count: 3}, {Count: 0xFFFFFFF0}}, 3)
	require.ErrorIs(t, err, ErrMalformedBox)
	require.ErrorAs(t, err, &perr)
	require.Equal(t, CTTS, perr.Tag)

	_, err = BlowupTimeToSamples([]TimeToSampleEntry{{Count: 1}}, -1)
	require.ErrorIs(t, err, ErrMalformedBox)
}

func TestSamplesPerChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []SampleToChunkEntry
		chunks  int
		want    []uint32
	}{
		{"two_runs", []SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 4}, {FirstChunk: 3, SamplesPerChunk: 2}}, 5, []uint32{4, 4, 2, 2, 2}},
		{"single_run", []SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 1}}, 3, []uint32{1, 1, 1}},
		{"run_past_end", []SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 3}, {FirstChunk: 9, SamplesPerChunk: 1}}, 2, []uint32{3, 3}},
		{"empty", nil, 2, []uint32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stsc := &SampleToChunk{Entries: tt.entries}
			require.Equal(t, tt.want, stsc.SamplesPerChunk(tt.chunks))
		})
	}
}
