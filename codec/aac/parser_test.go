package aac

import (
	"bytes"
	"io"
	"testing"

	"github.com/bluenviron/mediacommon/pkg/codecs/mpeg4audio"
	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4"
)

// createADTSHeader builds a header by hand, with a zero CRC when protected.
func createADTSHeader(objectType uint, sampleRateIndex uint, channelConfig uint, frameLength int, samples int, protected bool) []byte {
	header := make([]byte, 9)
	header[0] = 0xff
	if protected {
		header[1] = 0xf0
	} else {
		header[1] = 0xf1
	}
	header[2] = byte((objectType-1)&0x3)<<6 | byte(sampleRateIndex&0xf)<<2 | byte(channelConfig>>2)&0x1
	header[3] = byte(channelConfig&0x3)<<6 | byte((frameLength>>11)&0x3)
	header[4] = byte(frameLength >> 3)
	header[5] = byte((frameLength&0x7)<<5) | 0x1f
	header[6] = byte((samples/1024-1)&0x3) | 0xfc
	if !protected {
		return header[:7]
	}
	return header
}

func TestParseADTSHeader_ValidCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		objectType     uint
		sampleRateIdx  uint
		channelConfig  uint
		frameLength    int
		samples        int
		protected      bool
		expectedRate   int
		expectedLayout gomp4.ChannelLayout
	}{
		{
			name:           "unprotected_mono_48khz",
			objectType:     AotAacLc,
			sampleRateIdx:  3,
			channelConfig:  1,
			frameLength:    100,
			samples:        1024,
			expectedRate:   48000,
			expectedLayout: gomp4.ChFrontCenter,
		},
		{
			name:           "protected_stereo_44khz",
			objectType:     AotAacLc,
			sampleRateIdx:  4,
			channelConfig:  2,
			frameLength:    200,
			samples:        2048,
			protected:      true,
			expectedRate:   44100,
			expectedLayout: gomp4.ChStereo,
		},
		{
			name:           "unprotected_5_1_96khz",
			objectType:     AotAacMain,
			sampleRateIdx:  0,
			channelConfig:  6,
			frameLength:    500,
			samples:        4096,
			expectedRate:   96000,
			expectedLayout: gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight | gomp4.ChBackLeft | gomp4.ChBackRight | gomp4.ChLowFreq,
		},
		{
			name:           "7_1_at_7350",
			objectType:     AotAacLc,
			sampleRateIdx:  12,
			channelConfig:  7,
			frameLength:    8191,
			samples:        1024,
			expectedRate:   7350,
			expectedLayout: chanConfigTable[7],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frame := createADTSHeader(tt.objectType, tt.sampleRateIdx, tt.channelConfig, tt.frameLength, tt.samples, tt.protected)
			h, err := ParseADTSHeader(frame)
			require.NoError(t, err)

			require.Equal(t, tt.expectedRate, h.SampleRate())
			require.Equal(t, tt.expectedLayout, h.ChannelLayout())
			require.Equal(t, tt.frameLength, h.FrameLength)
			require.Equal(t, tt.samples, h.Samples())
			require.Equal(t, tt.protected, !h.ProtectionAbsent)
			require.Equal(t, len(frame), h.HeaderLen())
			require.Equal(t, tt.frameLength-len(frame), h.PayloadLen())

			config := h.Config()
			require.Equal(t, tt.objectType, config.ObjectType)
			require.Equal(t, tt.sampleRateIdx, config.SampleRateIndex)
			require.Equal(t, tt.channelConfig, config.ChannelConfig)
			require.Equal(t, tt.expectedRate, config.SampleRate)

			out := make([]byte, ADTSHeaderLength)
			require.Equal(t, ADTSHeaderLength, h.Marshal(out))
			require.Equal(t, frame[:ADTSHeaderLength], out)
		})
	}
}

func TestParseADTSHeader_InvalidCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		frame     []byte
		malformed bool
	}{
		{"too_short", []byte{0xff, 0xf1, 0x50}, false},
		{"bad_sync", []byte{0xff, 0xe1, 0x50, 0x80, 0x02, 0x1f, 0xfc}, true},
		{"reserved_rate_index", createADTSHeader(AotAacLc, 13, 2, 100, 1024, false), true},
		{"channel_config_zero", createADTSHeader(AotAacLc, 4, 0, 100, 1024, false), true},
		{"frame_shorter_than_header", createADTSHeader(AotAacLc, 4, 2, 8, 1024, true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseADTSHeader(tt.frame)
			require.Error(t, err)
			if tt.malformed {
				require.ErrorIs(t, err, ErrMalformedFrame)
			} else {
				require.ErrorIs(t, err, io.ErrUnexpectedEOF)
			}
		})
	}
}

func TestNewADTSHeaderMatchesMediacommon(t *testing.T) {
	t.Parallel()

	au := bytes.Repeat([]byte{0x21}, 300)
	ref, err := mpeg4audio.ADTSPackets{{
		Type:         mpeg4audio.ObjectTypeAACLC,
		SampleRate:   44100,
		ChannelCount: 2,
		AU:           au,
	}}.Marshal()
	require.NoError(t, err)

	h, err := NewADTSHeader(MPEG4AudioConfig{ObjectType: AotAacLc, SampleRateIndex: 4, ChannelConfig: 2}, len(au))
	require.NoError(t, err)
	b := make([]byte, ADTSHeaderLength)
	h.Marshal(b)
	require.Equal(t, ref[:ADTSHeaderLength], b)

	_, err = NewADTSHeader(MPEG4AudioConfig{ObjectType: AotAacLc, SampleRateIndex: 4, ChannelConfig: 2}, 8190)
	require.Error(t, err)
	_, err = NewADTSHeader(MPEG4AudioConfig{ObjectType: AotSbr, SampleRateIndex: 4, ChannelConfig: 2}, 10)
	require.Error(t, err)
}

func TestMPEG4AudioConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config MPEG4AudioConfig
		want   []byte
		rate   int
		chans  int
	}{
		{"lc_44100_stereo", MPEG4AudioConfig{ObjectType: AotAacLc, SampleRateIndex: 4, ChannelConfig: 2}, []byte{0x12, 0x10}, 44100, 2},
		{"lc_48000_mono", MPEG4AudioConfig{ObjectType: AotAacLc, SampleRateIndex: 3, ChannelConfig: 1}, []byte{0x11, 0x88}, 48000, 1},
		{"lookup_from_rate_and_layout", MPEG4AudioConfig{ObjectType: AotAacLc, SampleRate: 16000, ChannelLayout: gomp4.ChStereo}, []byte{0x14, 0x10}, 16000, 2},
		{"explicit_rate", MPEG4AudioConfig{ObjectType: AotAacLc, SampleRate: 44000, ChannelConfig: 2}, []byte{0x17, 0x80, 0x55, 0xf0, 0x10}, 44000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := tt.config.Marshal()
			require.NoError(t, err)
			require.Equal(t, tt.want, b)

			var ref mpeg4audio.Config
			require.NoError(t, ref.Unmarshal(b))
			require.Equal(t, mpeg4audio.ObjectTypeAACLC, ref.Type)
			require.Equal(t, tt.rate, ref.SampleRate)
			require.Equal(t, tt.chans, ref.ChannelCount)

			parsed, err := ParseMPEG4AudioConfigBytes(b)
			require.NoError(t, err)
			require.Equal(t, uint(AotAacLc), parsed.ObjectType)
			require.Equal(t, tt.rate, parsed.SampleRate)
			require.Equal(t, tt.chans, parsed.ChannelLayout.Count())
		})
	}
}

func TestParseMPEG4AudioConfigBytes_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseMPEG4AudioConfigBytes(nil)
	require.Error(t, err)

	// escaped object type cut short
	_, err = ParseMPEG4AudioConfigBytes([]byte{0xf8})
	require.ErrorIs(t, err, io.EOF)

	config, err := ParseMPEG4AudioConfigBytes([]byte{0xf8, 0x08, 0x80})
	require.NoError(t, err)
	require.Equal(t, uint(32), config.ObjectType)
}

func TestWriteMPEG4AudioConfig_NilWriter(t *testing.T) {
	t.Parallel()

	require.Error(t, WriteMPEG4AudioConfig(nil, MPEG4AudioConfig{ObjectType: AotAacLc}))
}
