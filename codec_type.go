package gomp4

import "github.com/ugparu/gomp4/format/mp4/mp4io"

// CodecType identifies the coding of a track's samples.
type CodecType uint32

const codecTypeAudioBit = 0x1

const (
	UnknownCodec CodecType = 0
	H264         CodecType = iota << 1
	H265
	MPEG4Video
	AAC = CodecType(iota<<1) | codecTypeAudioBit
)

// String returns the human-readable name of the codec.
func (ct CodecType) String() string {
	switch ct {
	case H264:
		return "H264"
	case H265:
		return "H265"
	case MPEG4Video:
		return "MPEG4_VIDEO"
	case AAC:
		return "AAC"
	}
	return "UNKNOWN"
}

func (ct CodecType) IsAudio() bool {
	return ct != UnknownCodec && ct&codecTypeAudioBit != 0
}

func (ct CodecType) IsVideo() bool {
	return ct != UnknownCodec && ct&codecTypeAudioBit == 0
}

// CodecTypeOf maps a sample entry format to its codec.
func CodecTypeOf(format mp4io.Tag) CodecType {
	switch format {
	case mp4io.AVC1, mp4io.AVC3:
		return H264
	case mp4io.HEV1, mp4io.HVC1:
		return H265
	case mp4io.MP4V:
		return MPEG4Video
	case mp4io.MP4A:
		return AAC
	}
	return UnknownCodec
}

// TrackCodec returns the codec of the first sample entry of t.
func TrackCodec(t Track) CodecType {
	stsd := t.SampleDesc()
	if stsd == nil || len(stsd.Boxes) == 0 {
		return UnknownCodec
	}
	return CodecTypeOf(stsd.Boxes[0].Tag())
}
