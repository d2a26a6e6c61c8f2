package aac

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/logger"
)

// Track is an AAC track imported from an ADTS stream. Samples are raw access
// units with the ADTS headers stripped.
type Track struct {
	header     ADTSHeader
	config     MPEG4AudioConfig
	samples    gomp4.MemSamples
	stts       []mp4io.TimeToSampleEntry
	stsd       *mp4io.SampleDesc
	meta       gomp4.TrackMetaData
	AvgBitrate uint32
	MaxBitrate uint32
}

// NewTrack reads the whole ADTS stream from r.
func NewTrack(r io.Reader) (*Track, error) {
	br := bufio.NewReader(r)

	sniff, err := br.Peek(SniffSize)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("aacparser: stream shorter than %d bytes: %w", SniffSize, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	first, err := ParseADTSHeader(sniff)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotADTS, err)
	}

	t := &Track{header: first, config: first.Config()}
	t.config.ObjectType = AotAacLc
	if err = t.readFrames(br); err != nil {
		return nil, err
	}

	t.AvgBitrate, t.MaxBitrate = bitrates(t.samples, first.SampleRate())
	if t.stsd, err = t.sampleDesc(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	t.meta = gomp4.TrackMetaData{
		TrackID:          1,
		Timescale:        uint32(first.SampleRate()), //nolint:gosec // table rate
		Language:         language,
		CreationTime:     now,
		ModificationTime: now,
		Volume:           1,
	}

	logger.Debugf(t, "imported %d frames, %d Hz, %d channels, avg %d bit/s, max %d bit/s",
		len(t.samples), first.SampleRate(), first.ChannelLayout().Count(), t.AvgBitrate, t.MaxBitrate)
	return t, nil
}

func (t *Track) readFrames(br *bufio.Reader) error {
	for {
		peek, err := br.Peek(HeaderPeekSize)
		if len(peek) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("aacparser: frame %d: %w", len(t.samples), err)
		}
		h, err := ParseADTSHeader(peek)
		if err != nil {
			if errors.Is(err, ErrMalformedFrame) {
				return fmt.Errorf("aacparser: frame %d: %w", len(t.samples), err)
			}
			return fmt.Errorf("%w: frame %d: %w", ErrMalformedFrame, len(t.samples), err)
		}
		if _, err = br.Discard(h.HeaderLen()); err != nil {
			return fmt.Errorf("%w: frame %d header: %w", ErrMalformedFrame, len(t.samples), err)
		}
		payload := make([]byte, h.PayloadLen())
		if _, err = io.ReadFull(br, payload); err != nil {
			return fmt.Errorf("%w: frame %d payload: %w", ErrMalformedFrame, len(t.samples), err)
		}
		t.samples = append(t.samples, payload)
		t.stts = append(t.stts, mp4io.TimeToSampleEntry{Count: 1, Duration: SamplesPerFrame})
	}
}

// bitrates returns the average bitrate and the highest bitrate over any run of one
// second worth of consecutive frames.
func bitrates(samples gomp4.MemSamples, sampleRate int) (avg, peak uint32) {
	if len(samples) == 0 || sampleRate == 0 {
		return 0, 0
	}
	packetsPerSecond := float64(sampleRate) / SamplesPerFrame
	window := max(int(packetsPerSecond), 1)

	total := 0
	for _, s := range samples {
		total += len(s)
	}
	seconds := float64(len(samples)) / packetsPerSecond
	avg = uint32(8 * float64(total) / seconds)

	if len(samples) < window {
		return avg, avg
	}
	windowSeconds := float64(window) / packetsPerSecond
	windowBytes := 0
	for i, s := range samples {
		windowBytes += len(s)
		if i >= window {
			windowBytes -= len(samples[i-window])
		}
		if i >= window-1 {
			peak = max(peak, uint32(8*float64(windowBytes)/windowSeconds))
		}
	}
	return avg, peak
}

func (t *Track) sampleDesc() (*mp4io.SampleDesc, error) {
	asc, err := t.config.Marshal()
	if err != nil {
		return nil, err
	}
	esds := mp4io.NewAudioElemStreamDesc(asc, t.MaxBitrate, t.AvgBitrate)
	stsd := &mp4io.SampleDesc{}
	stsd.Add(mp4io.NewMP4ADesc(uint32(t.header.SampleRate()), esds)) //nolint:gosec // table rate
	return stsd, nil
}

func (t *Track) String() string {
	return "AAC_TRACK"
}

// Header returns the ADTS header of the first frame.
func (t *Track) Header() ADTSHeader {
	return t.header
}

// Config returns the AudioSpecificConfig written to the esds box.
func (t *Track) Config() MPEG4AudioConfig {
	return t.config
}

func (t *Track) Samples() gomp4.Samples {
	return t.samples
}

func (t *Track) SampleDesc() *mp4io.SampleDesc {
	return t.stsd
}

func (t *Track) TimeToSamples() []mp4io.TimeToSampleEntry {
	return t.stts
}

func (t *Track) CompositionOffsets() []mp4io.CompositionOffsetEntry {
	return nil
}

func (t *Track) SyncSamples() []uint32 {
	return nil
}

func (t *Track) SampleDependencies() []mp4io.SampleDependencyEntry {
	return nil
}

func (t *Track) SubSampleInfo() *mp4io.SubSampleInfo {
	return nil
}

func (t *Track) MetaData() gomp4.TrackMetaData {
	return t.meta
}

func (t *Track) Handler() string {
	return handlerSound
}

func (t *Track) MediaHeader() mp4io.Atom {
	return &mp4io.SoundMediaInfo{}
}

var _ gomp4.Track = (*Track)(nil)
