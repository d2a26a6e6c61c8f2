package h264

import (
	"bytes"
	"errors"
	"slices"

	"github.com/icza/bitio"
	"github.com/ugparu/gomp4/utils/bits/pio"
)

var ErrDecconfInvalid = errors.New("h264parser: AVCDecoderConfRecord invalid")

// NotApplicable marks the chroma and bit depth fields of a record without extensions.
const NotApplicable = -1

// AVCDecoderConfRecord is the AVCDecoderConfigurationRecord carried by the avcC box.
type AVCDecoderConfRecord struct {
	ConfigurationVersion uint8
	AVCProfileIndication uint8
	ProfileCompatibility uint8
	AVCLevelIndication   uint8
	LengthSizeMinusOne   uint8
	SPS                  [][]byte
	PPS                  [][]byte

	// HasExts requests the high profile extension. It is only honoured for the
	// profiles listed in extendedProfiles.
	HasExts              bool
	ChromaFormat         int
	BitDepthLumaMinus8   int
	BitDepthChromaMinus8 int
	SPSExt               [][]byte

	// Trailing holds bytes after the last parsed field.
	Trailing []byte
}

var extendedProfiles = []uint8{100, 110, 122, 144}

// NewAVCDecoderConfRecord builds a record for a single SPS/PPS pair with 4 byte NALU lengths.
func NewAVCDecoderConfRecord(sps, pps []byte) (avc AVCDecoderConfRecord, err error) {
	if len(sps) < spsHeaderSize {
		err = ErrDecconfInvalid
		return
	}
	avc = AVCDecoderConfRecord{
		ConfigurationVersion: 1,
		AVCProfileIndication: sps[1],
		ProfileCompatibility: sps[2],
		AVCLevelIndication:   sps[3],
		LengthSizeMinusOne:   naluLengthSize - 1,
		SPS:                  [][]byte{sps},
		PPS:                  [][]byte{pps},
		ChromaFormat:         NotApplicable,
		BitDepthLumaMinus8:   NotApplicable,
		BitDepthChromaMinus8: NotApplicable,
	}
	if slices.Contains(extendedProfiles, avc.AVCProfileIndication) {
		avc.HasExts = true
		avc.ChromaFormat = defaultChromaFormat
		avc.BitDepthLumaMinus8 = 0
		avc.BitDepthChromaMinus8 = 0
	}
	return
}

// HasExtensions reports whether the chroma, bit depth and SPS extension fields are
// serialized. Parse and serialize use the same predicate.
func (avc *AVCDecoderConfRecord) HasExtensions() bool {
	return avc.HasExts && slices.Contains(extendedProfiles, avc.AVCProfileIndication)
}

func readParamSets(b []byte, n int, count int) (sets [][]byte, m int, err error) {
	for range count {
		if len(b) < n+lengthFieldSize {
			err = ErrDecconfInvalid
			return
		}
		l := int(pio.U16BE(b[n:]))
		n += lengthFieldSize
		if len(b) < n+l {
			err = ErrDecconfInvalid
			return
		}
		sets = append(sets, b[n:n+l])
		n += l
	}
	return sets, n, nil
}

// Unmarshal decodes the record from b and returns the number of bytes consumed.
func (avc *AVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	const minLength = 7
	if len(b) < minLength {
		err = ErrDecconfInvalid
		return
	}

	avc.ConfigurationVersion = b[0]
	avc.AVCProfileIndication = b[1]
	avc.ProfileCompatibility = b[2]
	avc.AVCLevelIndication = b[3]
	avc.LengthSizeMinusOne = b[4] & maskLengthSizeMinusOne
	n = 6

	if avc.SPS, n, err = readParamSets(b, n, int(b[5]&maskSPSCount)); err != nil {
		return
	}
	if len(b) < n+1 {
		err = ErrDecconfInvalid
		return
	}
	ppscount := int(b[n])
	n++
	if avc.PPS, n, err = readParamSets(b, n, ppscount); err != nil {
		return
	}

	avc.HasExts = len(b)-n >= extensionMinSize
	avc.ChromaFormat = NotApplicable
	avc.BitDepthLumaMinus8 = NotApplicable
	avc.BitDepthChromaMinus8 = NotApplicable
	avc.SPSExt = nil

	if avc.HasExtensions() {
		r := bitio.NewReader(bytes.NewReader(b[n : n+3]))
		r.TryReadBits(6)
		avc.ChromaFormat = int(r.TryReadBits(2))
		r.TryReadBits(5)
		avc.BitDepthLumaMinus8 = int(r.TryReadBits(3))
		r.TryReadBits(5)
		avc.BitDepthChromaMinus8 = int(r.TryReadBits(3))
		if r.TryError != nil {
			err = ErrDecconfInvalid
			return
		}
		n += 3
		extcount := int(b[n])
		n++
		if avc.SPSExt, n, err = readParamSets(b, n, extcount); err != nil {
			return
		}
	}

	avc.Trailing = nil
	if n < len(b) {
		avc.Trailing = b[n:]
	}
	n = len(b)
	return
}

// Len returns the serialized size of the record.
func (avc *AVCDecoderConfRecord) Len() (n int) {
	n = 7
	for _, sps := range avc.SPS {
		n += lengthFieldSize + len(sps)
	}
	for _, pps := range avc.PPS {
		n += lengthFieldSize + len(pps)
	}
	if avc.HasExtensions() {
		n += extensionMinSize
		for _, ext := range avc.SPSExt {
			n += lengthFieldSize + len(ext)
		}
	}
	return n + len(avc.Trailing)
}

func putParamSets(b []byte, sets [][]byte) (n int) {
	for _, set := range sets {
		pio.PutU16BE(b[n:], uint16(len(set))) //nolint:gosec // parameter sets are far below 64 KiB
		n += lengthFieldSize
		n += copy(b[n:], set)
	}
	return
}

func orDefault(v, def int) uint64 {
	if v < 0 {
		return uint64(def) //nolint:gosec // small positive constants
	}
	return uint64(v) //nolint:gosec // checked above
}

// Marshal writes the record into b, which must hold Len bytes.
func (avc *AVCDecoderConfRecord) Marshal(b []byte) (n int) {
	b[0] = avc.ConfigurationVersion
	if b[0] == 0 {
		b[0] = 1
	}
	b[1] = avc.AVCProfileIndication
	b[2] = avc.ProfileCompatibility
	b[3] = avc.AVCLevelIndication
	b[4] = avc.LengthSizeMinusOne&maskLengthSizeMinusOne | maskLengthSizeMinusOneInv
	b[5] = uint8(len(avc.SPS))&maskSPSCount | maskSPSCountInv //nolint:gosec // at most 31 SPS
	n = 6
	n += putParamSets(b[n:], avc.SPS)
	b[n] = uint8(len(avc.PPS)) //nolint:gosec // at most 255 PPS
	n++
	n += putParamSets(b[n:], avc.PPS)

	if avc.HasExtensions() {
		w := bitio.NewWriter(bytes.NewBuffer(b[n:n]))
		w.TryWriteBits(0x3f, 6)
		w.TryWriteBits(orDefault(avc.ChromaFormat, defaultChromaFormat)&0x03, 2)
		w.TryWriteBits(0x1f, 5)
		w.TryWriteBits(orDefault(avc.BitDepthLumaMinus8, 0)&0x07, 3)
		w.TryWriteBits(0x1f, 5)
		w.TryWriteBits(orDefault(avc.BitDepthChromaMinus8, 0)&0x07, 3)
		w.Close()
		n += 3
		b[n] = uint8(len(avc.SPSExt)) //nolint:gosec // at most 255 extensions
		n++
		n += putParamSets(b[n:], avc.SPSExt)
	}

	n += copy(b[n:], avc.Trailing)
	return
}
