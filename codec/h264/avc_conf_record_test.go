package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testSPS = []byte{0x67, 0x42, 0xc0, 0x1f, 0xda, 0x01, 0x40, 0x16, 0xe8}
	testPPS = []byte{0x68, 0xce, 0x3c, 0x80}
)

func marshalRecord(avc *AVCDecoderConfRecord) []byte {
	b := make([]byte, avc.Len())
	n := avc.Marshal(b)
	return b[:n]
}

func TestAVCDecoderConfRecordBaseline(t *testing.T) {
	t.Parallel()

	avc, err := NewAVCDecoderConfRecord(testSPS, testPPS)
	require.NoError(t, err)
	require.False(t, avc.HasExts)

	b := marshalRecord(&avc)
	want := []byte{
		0x01, 0x42, 0xc0, 0x1f, 0xff, 0xe1,
		0x00, 0x09, 0x67, 0x42, 0xc0, 0x1f, 0xda, 0x01, 0x40, 0x16, 0xe8,
		0x01, 0x00, 0x04, 0x68, 0xce, 0x3c, 0x80,
	}
	require.Equal(t, want, b)

	var parsed AVCDecoderConfRecord
	n, err := parsed.Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, uint8(1), parsed.ConfigurationVersion)
	require.Equal(t, uint8(3), parsed.LengthSizeMinusOne)
	require.Equal(t, [][]byte{testSPS}, parsed.SPS)
	require.Equal(t, [][]byte{testPPS}, parsed.PPS)
	require.Equal(t, NotApplicable, parsed.ChromaFormat)
	require.Equal(t, NotApplicable, parsed.BitDepthLumaMinus8)
	require.Equal(t, NotApplicable, parsed.BitDepthChromaMinus8)
	require.Empty(t, parsed.Trailing)
}

func TestAVCDecoderConfRecordBaselineIgnoresHasExts(t *testing.T) {
	t.Parallel()

	avc := AVCDecoderConfRecord{
		ConfigurationVersion: 1,
		AVCProfileIndication: 66,
		AVCLevelIndication:   31,
		LengthSizeMinusOne:   3,
		SPS:                  [][]byte{testSPS},
		PPS:                  [][]byte{testPPS},
		HasExts:              true,
		ChromaFormat:         2,
		BitDepthLumaMinus8:   4,
		BitDepthChromaMinus8: 4,
		SPSExt:               [][]byte{{0x6d, 0x01}},
	}
	require.False(t, avc.HasExtensions())

	b := marshalRecord(&avc)
	require.Len(t, b, 7+2+len(testSPS)+2+len(testPPS))

	var parsed AVCDecoderConfRecord
	_, err := parsed.Unmarshal(b)
	require.NoError(t, err)
	require.False(t, parsed.HasExts)
	require.Equal(t, NotApplicable, parsed.ChromaFormat)
	require.Nil(t, parsed.SPSExt)
}

func TestAVCDecoderConfRecordChromaInvariant(t *testing.T) {
	t.Parallel()

	for _, profile := range []uint8{66, 77, 88, 100, 110, 122, 144} {
		for chroma := range 4 {
			avc := AVCDecoderConfRecord{
				ConfigurationVersion: 1,
				AVCProfileIndication: profile,
				LengthSizeMinusOne:   3,
				SPS:                  [][]byte{testSPS},
				PPS:                  [][]byte{testPPS},
				HasExts:              true,
				ChromaFormat:         chroma,
				BitDepthLumaMinus8:   2,
				BitDepthChromaMinus8: 1,
			}

			var parsed AVCDecoderConfRecord
			_, err := parsed.Unmarshal(marshalRecord(&avc))
			require.NoError(t, err)

			if avc.HasExtensions() {
				require.Equal(t, chroma, parsed.ChromaFormat, "profile %d", profile)
				require.Equal(t, 2, parsed.BitDepthLumaMinus8)
				require.Equal(t, 1, parsed.BitDepthChromaMinus8)
			} else {
				require.Equal(t, NotApplicable, parsed.ChromaFormat, "profile %d", profile)
			}
		}
	}
}

func TestAVCDecoderConfRecordHighProfileLayout(t *testing.T) {
	t.Parallel()

	avc := AVCDecoderConfRecord{
		ConfigurationVersion: 1,
		AVCProfileIndication: 100,
		AVCLevelIndication:   40,
		LengthSizeMinusOne:   3,
		SPS:                  [][]byte{testSPS},
		PPS:                  [][]byte{testPPS},
		HasExts:              true,
		ChromaFormat:         1,
		BitDepthLumaMinus8:   0,
		BitDepthChromaMinus8: 0,
		SPSExt:               [][]byte{{0x6d, 0x02}},
	}
	b := marshalRecord(&avc)
	tail := b[len(b)-8:]
	require.Equal(t, []byte{0xfd, 0xf8, 0xf8, 0x01, 0x00, 0x02, 0x6d, 0x02}, tail)

	var parsed AVCDecoderConfRecord
	_, err := parsed.Unmarshal(b)
	require.NoError(t, err)
	require.True(t, parsed.HasExtensions())
	require.Equal(t, [][]byte{{0x6d, 0x02}}, parsed.SPSExt)
	require.Equal(t, b, marshalRecord(&parsed))
}

func TestAVCDecoderConfRecordTrailingKept(t *testing.T) {
	t.Parallel()

	avc, err := NewAVCDecoderConfRecord(testSPS, testPPS)
	require.NoError(t, err)
	b := append(marshalRecord(&avc), 0x00, 0x00)

	var parsed AVCDecoderConfRecord
	_, err = parsed.Unmarshal(b)
	require.NoError(t, err)
	require.False(t, parsed.HasExts)
	require.Equal(t, []byte{0x00, 0x00}, parsed.Trailing)
	require.Equal(t, b, marshalRecord(&parsed))
}

func TestAVCDecoderConfRecordInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0x01, 0x42, 0xc0}},
		{"sps_length_overflow", []byte{0x01, 0x42, 0xc0, 0x1f, 0xff, 0xe1, 0x00, 0x20, 0x67}},
		{"missing_pps_count", []byte{0x01, 0x42, 0xc0, 0x1f, 0xff, 0xe1, 0x00, 0x01, 0x67}},
		{"pps_truncated", []byte{0x01, 0x42, 0xc0, 0x1f, 0xff, 0xe0, 0x01, 0x00, 0x04, 0x68}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var avc AVCDecoderConfRecord
			_, err := avc.Unmarshal(tt.data)
			require.ErrorIs(t, err, ErrDecconfInvalid)
		})
	}
}
