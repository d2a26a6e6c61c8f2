//nolint:mnd // .
package aac

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
	"github.com/ugparu/gomp4"
)

// Audio object types of ISO/IEC 14496-3 Table 1.17 that ADTS can carry.
const (
	AotAacMain = 1 + iota // Main
	AotAacLc              // Low Complexity
	AotAacSsr             // Scalable Sample Rate
	AotAacLtp             // Long Term Prediction
	AotSbr                // Spectral Band Replication
)

const (
	aotEscape         = 31
	explicitRateIndex = 0xf
	adtsSyncWord      = 0xfff
)

var (
	ErrNotADTS        = errors.New("aacparser: not an ADTS stream")
	ErrMalformedFrame = errors.New("aacparser: malformed ADTS frame")
)

type MPEG4AudioConfig struct {
	SampleRate      int
	ChannelLayout   gomp4.ChannelLayout
	ObjectType      uint
	SampleRateIndex uint
	ChannelConfig   uint
}

func (config *MPEG4AudioConfig) IsValid() bool {
	return config.ObjectType > 0
}

// Complete fills SampleRate and ChannelLayout from the table indexes.
func (config *MPEG4AudioConfig) Complete() {
	if config.SampleRateIndex < uint(len(sampleRateTable)) {
		config.SampleRate = sampleRateTable[config.SampleRateIndex]
	}
	if config.ChannelConfig < uint(len(chanConfigTable)) {
		config.ChannelLayout = chanConfigTable[config.ChannelConfig]
	}
}

var sampleRateTable = []int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

// SampleRateIndex returns the frequency index of rate, or false when rate has none.
func SampleRateIndex(rate int) (uint, bool) {
	for i, r := range sampleRateTable {
		if r == rate {
			return uint(i), true //nolint:gosec // table index
		}
	}
	return 0, false
}

// Channel configurations 1..7; 0 means the layout is given by a program config element.
var chanConfigTable = []gomp4.ChannelLayout{
	0,
	gomp4.ChFrontCenter,
	gomp4.ChFrontLeft | gomp4.ChFrontRight,
	gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight,
	gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight | gomp4.ChBackCenter,
	gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight | gomp4.ChBackLeft | gomp4.ChBackRight,
	gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight | gomp4.ChBackLeft | gomp4.ChBackRight | gomp4.ChLowFreq,
	gomp4.ChFrontCenter | gomp4.ChFrontLeft | gomp4.ChFrontRight | gomp4.ChSideLeft | gomp4.ChSideRight |
		gomp4.ChBackLeft | gomp4.ChBackRight | gomp4.ChLowFreq,
}

// ADTSHeaderLength is the size of an ADTS header without CRC.
const ADTSHeaderLength = 7

// ADTSHeader is the fixed and variable header of one ADTS frame.
//
//	AAAAAAAA AAAABCCD EEFFFFGH HHIJKLMM MMMMMMMM MMMOOOOO OOOOOOPP (QQQQQQQQ QQQQQQQQ)
type ADTSHeader struct {
	ID               uint8 // 0 for MPEG-4, 1 for MPEG-2
	Layer            uint8
	ProtectionAbsent bool
	Profile          uint8 // object type minus one
	SampleRateIndex  uint8
	Private          bool
	ChannelConfig    uint8
	Original         bool
	Home             bool
	CopyrightIDBit   bool
	CopyrightIDStart bool
	FrameLength      int // header and CRC included
	BufferFullness   uint16
	RawDataBlocks    uint8 // number of raw data blocks minus one
}

// NewADTSHeader returns the header of an unprotected frame carrying payloadLength bytes.
func NewADTSHeader(config MPEG4AudioConfig, payloadLength int) (h ADTSHeader, err error) {
	if !config.IsValid() || config.ObjectType > 4 {
		return h, fmt.Errorf("aacparser: object type %d cannot be carried in ADTS", config.ObjectType)
	}
	if config.SampleRateIndex >= uint(len(sampleRateTable)) {
		return h, fmt.Errorf("aacparser: invalid sample rate index: %d", config.SampleRateIndex)
	}
	if config.ChannelConfig >= uint(len(chanConfigTable)) {
		return h, fmt.Errorf("aacparser: invalid channel configuration: %d", config.ChannelConfig)
	}
	if payloadLength < 0 || payloadLength+ADTSHeaderLength >= 1<<13 {
		return h, fmt.Errorf("aacparser: invalid payload length: %d", payloadLength)
	}
	return ADTSHeader{
		ProtectionAbsent: true,
		Profile:          uint8(config.ObjectType - 1),   //nolint:gosec // checked above
		SampleRateIndex:  uint8(config.SampleRateIndex), //nolint:gosec // checked above
		ChannelConfig:    uint8(config.ChannelConfig),   //nolint:gosec // checked above
		FrameLength:      payloadLength + ADTSHeaderLength,
		BufferFullness:   0x7ff,
	}, nil
}

// ParseADTSHeader decodes the header at the start of frame. The CRC, when present,
// is counted by HeaderLen but not checked.
func ParseADTSHeader(frame []byte) (h ADTSHeader, err error) {
	if len(frame) < ADTSHeaderLength {
		return h, fmt.Errorf("aacparser: ADTS header needs %d bytes, got %d: %w",
			ADTSHeaderLength, len(frame), io.ErrUnexpectedEOF)
	}

	r := bitio.NewReader(bytes.NewReader(frame[:ADTSHeaderLength]))
	if sync := r.TryReadBits(12); sync != adtsSyncWord {
		return h, fmt.Errorf("%w: sync word %03x", ErrMalformedFrame, sync)
	}
	h.ID = uint8(r.TryReadBits(1))
	h.Layer = uint8(r.TryReadBits(2))
	h.ProtectionAbsent = r.TryReadBool()
	h.Profile = uint8(r.TryReadBits(2))
	h.SampleRateIndex = uint8(r.TryReadBits(4))
	h.Private = r.TryReadBool()
	h.ChannelConfig = uint8(r.TryReadBits(3))
	h.Original = r.TryReadBool()
	h.Home = r.TryReadBool()
	h.CopyrightIDBit = r.TryReadBool()
	h.CopyrightIDStart = r.TryReadBool()
	h.FrameLength = int(r.TryReadBits(13))
	h.BufferFullness = uint16(r.TryReadBits(11))
	h.RawDataBlocks = uint8(r.TryReadBits(2))
	if r.TryError != nil {
		return h, fmt.Errorf("aacparser: reading ADTS header: %w", r.TryError)
	}

	if int(h.SampleRateIndex) >= len(sampleRateTable) {
		return h, fmt.Errorf("%w: invalid sample rate index %d", ErrMalformedFrame, h.SampleRateIndex)
	}
	if h.ChannelConfig == 0 {
		return h, fmt.Errorf("%w: channel configuration 0 is not supported", ErrMalformedFrame)
	}
	if h.FrameLength < h.HeaderLen() {
		return h, fmt.Errorf("%w: frame length %d shorter than header %d", ErrMalformedFrame, h.FrameLength, h.HeaderLen())
	}
	return h, nil
}

// HeaderLen returns 7, or 9 when a CRC follows the header.
func (h ADTSHeader) HeaderLen() int {
	if h.ProtectionAbsent {
		return ADTSHeaderLength
	}
	return ADTSHeaderLength + 2
}

func (h ADTSHeader) PayloadLen() int {
	return h.FrameLength - h.HeaderLen()
}

func (h ADTSHeader) SampleRate() int {
	return sampleRateTable[h.SampleRateIndex]
}

// Samples returns the PCM samples per channel carried by the frame.
func (h ADTSHeader) Samples() int {
	return (int(h.RawDataBlocks) + 1) * SamplesPerFrame
}

func (h ADTSHeader) ChannelLayout() gomp4.ChannelLayout {
	return chanConfigTable[h.ChannelConfig]
}

func (h ADTSHeader) Config() MPEG4AudioConfig {
	config := MPEG4AudioConfig{
		ObjectType:      uint(h.Profile) + 1,
		SampleRateIndex: uint(h.SampleRateIndex),
		ChannelConfig:   uint(h.ChannelConfig),
	}
	config.Complete()
	return config
}

// Marshal writes the 7 header bytes to b. The CRC of a protected frame is left to the caller.
func (h ADTSHeader) Marshal(b []byte) int {
	w := bitio.NewWriter(bytes.NewBuffer(b[:0]))
	w.TryWriteBits(adtsSyncWord, 12)
	w.TryWriteBits(uint64(h.ID), 1)
	w.TryWriteBits(uint64(h.Layer), 2)
	w.TryWriteBool(h.ProtectionAbsent)
	w.TryWriteBits(uint64(h.Profile), 2)
	w.TryWriteBits(uint64(h.SampleRateIndex), 4)
	w.TryWriteBool(h.Private)
	w.TryWriteBits(uint64(h.ChannelConfig), 3)
	w.TryWriteBool(h.Original)
	w.TryWriteBool(h.Home)
	w.TryWriteBool(h.CopyrightIDBit)
	w.TryWriteBool(h.CopyrightIDStart)
	w.TryWriteBits(uint64(h.FrameLength), 13) //nolint:gosec // 13 bit field
	w.TryWriteBits(uint64(h.BufferFullness), 11)
	w.TryWriteBits(uint64(h.RawDataBlocks), 2)
	_ = w.Close()
	return ADTSHeaderLength
}

func readObjectType(r *bitio.Reader) uint {
	objectType := uint(r.TryReadBits(5))
	if objectType == aotEscape {
		objectType = 32 + uint(r.TryReadBits(6))
	}
	return objectType
}

func writeObjectType(w *bitio.Writer, objectType uint) {
	if objectType >= 32 {
		w.TryWriteBits(aotEscape, 5)
		w.TryWriteBits(uint64(objectType-32), 6)
		return
	}
	w.TryWriteBits(uint64(objectType), 5)
}

// ParseMPEG4AudioConfigBytes decodes the leading fields of an AudioSpecificConfig.
func ParseMPEG4AudioConfigBytes(data []byte) (config MPEG4AudioConfig, err error) {
	if len(data) == 0 {
		return config, errors.New("aacparser: empty MPEG4 audio config data")
	}

	r := bitio.NewReader(bytes.NewReader(data))
	config.ObjectType = readObjectType(r)
	config.SampleRateIndex = uint(r.TryReadBits(4))
	if config.SampleRateIndex == explicitRateIndex {
		config.SampleRate = int(r.TryReadBits(24))
	}
	config.ChannelConfig = uint(r.TryReadBits(4))
	if r.TryError != nil {
		return config, fmt.Errorf("aacparser: insufficient MPEG4 audio config data: %w", r.TryError)
	}

	config.Complete()
	return config, nil
}

// WriteMPEG4AudioConfig writes the AudioSpecificConfig of config, padded to a byte boundary.
// A zero index or channel configuration is looked up from SampleRate and ChannelLayout.
func WriteMPEG4AudioConfig(w io.Writer, config MPEG4AudioConfig) error {
	if w == nil {
		return errors.New("aacparser: writer is nil")
	}

	bw := bitio.NewWriter(w)
	writeObjectType(bw, config.ObjectType)

	if config.SampleRateIndex == 0 && config.SampleRate != 0 {
		if idx, ok := SampleRateIndex(config.SampleRate); ok {
			config.SampleRateIndex = idx
		} else {
			config.SampleRateIndex = explicitRateIndex
		}
	}
	bw.TryWriteBits(uint64(config.SampleRateIndex), 4)
	if config.SampleRateIndex == explicitRateIndex {
		bw.TryWriteBits(uint64(config.SampleRate), 24) //nolint:gosec // 24 bit field
	}

	if config.ChannelConfig == 0 {
		for i, layout := range chanConfigTable {
			if layout == config.ChannelLayout {
				config.ChannelConfig = uint(i) //nolint:gosec // table index
			}
		}
	}
	bw.TryWriteBits(uint64(config.ChannelConfig), 4)

	if bw.TryError != nil {
		return fmt.Errorf("aacparser: writing MPEG4 audio config: %w", bw.TryError)
	}
	return bw.Close()
}

// Marshal returns the AudioSpecificConfig bytes of config.
func (config MPEG4AudioConfig) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMPEG4AudioConfig(&buf, config); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
