// Package gomp4 defines the track model shared by the MP4 reader, the writer,
// the elementary stream importers and the track transforms.
package gomp4

import (
	"errors"
	"fmt"
	"time"

	"github.com/ugparu/gomp4/format/mp4/mp4io"
)

// Samples gives random access to the samples of a track.
type Samples interface {
	Len() int                  // Returns the number of samples.
	Size(i int) int            // Returns the byte length of sample i, 0 outside [0, Len()).
	Get(i int) ([]byte, error) // Returns sample i. The slice may alias memory owned by the source file.
}

// TrackMetaData carries the tkhd and mdhd values of a track.
type TrackMetaData struct {
	TrackID          uint32
	Timescale        uint32
	Language         string // ISO 639-2/T code
	CreationTime     time.Time
	ModificationTime time.Time
	Width            float64
	Height           float64
	Volume           float64
	Layer            int16
	Group            int16
}

// Track is a single media track regardless of where its samples live.
type Track interface {
	Samples() Samples                                   // Returns the sample list.
	SampleDesc() *mp4io.SampleDesc                      // Returns the stsd box.
	TimeToSamples() []mp4io.TimeToSampleEntry           // Returns the decoding time deltas.
	CompositionOffsets() []mp4io.CompositionOffsetEntry // Returns composition offsets, nil if none.
	SyncSamples() []uint32                              // Returns 1-based sync sample numbers, nil if every sample is sync.
	SampleDependencies() []mp4io.SampleDependencyEntry  // Returns sdtp entries, nil if none.
	SubSampleInfo() *mp4io.SubSampleInfo                // Returns the subs box, nil if none.
	MetaData() TrackMetaData                            // Returns the header values of the track.
	Handler() string                                    // Returns the handler type ("soun", "vide"...).
	MediaHeader() mp4io.Atom                            // Returns the media specific header (smhd, vmhd...).
}

// Duration returns the total decoding duration of t in its own timescale.
func Duration(t Track) uint64 {
	return mp4io.TotalDuration(t.TimeToSamples())
}

// ErrSampleOutOfRange is returned by Samples.Get for an index outside [0, Len()).
var ErrSampleOutOfRange = errors.New("gomp4: sample index out of range")

// MemSamples is a sample list held in memory.
type MemSamples [][]byte

func (s MemSamples) Len() int {
	return len(s)
}

func (s MemSamples) Size(i int) int {
	if i < 0 || i >= len(s) {
		return 0
	}
	return len(s[i])
}

func (s MemSamples) Get(i int) ([]byte, error) {
	if i < 0 || i >= len(s) {
		return nil, fmt.Errorf("%w: %d of %d", ErrSampleOutOfRange, i, len(s))
	}
	return s[i], nil
}
