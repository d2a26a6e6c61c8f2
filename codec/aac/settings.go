package aac

// Constants used by the ADTS importer.
const (
	SniffSize       = 100  // bytes peeked to recognise an ADTS stream
	HeaderPeekSize  = 15   // bytes peeked for every frame header
	SamplesPerFrame = 1024 // PCM samples per channel in one AAC frame
	crcSize         = 2

	handlerSound = "soun"
	language     = "eng"
)
