package h264

const (
	// spsHeaderSize covers the NALU header and the profile, compatibility and level bytes.
	spsHeaderSize = 4

	// naluLengthSize is the NALU length prefix width used by new records.
	naluLengthSize = 4

	// defaultChromaFormat is 4:2:0.
	defaultChromaFormat = 1

	// extensionMinSize is chroma format, two bit depths and the SPS extension count.
	extensionMinSize = 4

	maskLengthSizeMinusOne    = 0x03
	maskSPSCount              = 0x1f
	maskLengthSizeMinusOneInv = 0xfc
	maskSPSCountInv           = 0xe0

	// lengthFieldSize is the width of the SPS/PPS length prefixes.
	lengthFieldSize = 2
)
