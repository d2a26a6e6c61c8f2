package mp4

import "time"

const (
	// MmapThreshold is the mdat payload size from which Open maps the payload instead of reading it.
	MmapThreshold = 1 << 20

	movieTimeScale = 1000
	writeBufSize   = 128 * 1024
	headerPeekSize = 16

	videoHandlerName = "VideoHandler"
	soundHandlerName = "SoundHandler"
)

// OpenOptions tunes how OpenWithOptions loads a file.
type OpenOptions struct {
	MmapThreshold int64 // mdat payloads at least this large are mapped; 0 means MmapThreshold
	NoMmap        bool  // read every box into memory
}

// BuildOptions tunes the file level boxes written by BuildWithOptions.
type BuildOptions struct {
	MajorBrand       string    // defaults to "isom"
	CompatibleBrands []string  // defaults to isom, iso2, avc1, mp41
	CreationTime     time.Time // defaults to the current time
}
