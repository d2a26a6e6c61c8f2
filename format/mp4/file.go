// Package mp4 opens, indexes and writes ISO base media files.
package mp4

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync/atomic"

	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/bits/pio"
	"github.com/ugparu/gomp4/utils/buffer"
	"github.com/ugparu/gomp4/utils/logger"
)

var ErrNoMovie = errors.New("mp4: 'moov' atom not found")

// File is a parsed ISO base media file. Boxes and sample views alias memory owned
// by the File and are only valid until Close; see SampleList.Retain.
type File struct {
	Atoms []mp4io.Atom

	state  *fileState
	owners []interface{ Release() }
}

// fileState is shared by a File and the sample lists of its tracks.
type fileState struct {
	name   string
	closed atomic.Bool
	mapped map[*mp4io.MediaData]*buffer.MmapRegion
}

// Open parses the file at path with the default options.
func Open(path string) (*File, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions parses the file at path. mdat payloads of at least
// opts.MmapThreshold bytes are memory mapped, everything else is read.
func OpenWithOptions(path string, opts OpenOptions) (file *File, err error) {
	if opts.MmapThreshold <= 0 {
		opts.MmapThreshold = MmapThreshold
	}

	var f *os.File
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()

	var fi os.FileInfo
	if fi, err = f.Stat(); err != nil {
		return
	}

	file = &File{state: &fileState{name: path, mapped: map[*mp4io.MediaData]*buffer.MmapRegion{}}}
	defer func() {
		if err != nil {
			file.Close()
			file = nil
		}
	}()

	hdr := make([]byte, headerPeekSize)
	size := fi.Size()
	for off := int64(0); off < size; {
		var (
			tag     mp4io.Tag
			boxSize int64
			hdrLen  int64
		)
		if tag, boxSize, hdrLen, err = readBoxHeader(f, hdr, off, size); err != nil {
			return
		}

		if tag == mp4io.MDAT && !opts.NoMmap && boxSize-hdrLen >= opts.MmapThreshold {
			if err = file.mapMediaData(f, off, boxSize, hdrLen); err != nil {
				return
			}
		} else if err = file.readBox(f, off, boxSize); err != nil {
			return
		}
		off += boxSize
	}

	logger.Debugf(file, "parsed %d top-level boxes", len(file.Atoms))
	return file, nil
}

// readBoxHeader decodes the header of the top-level box at off. size is the file size.
func readBoxHeader(f *os.File, hdr []byte, off, size int64) (tag mp4io.Tag, boxSize, hdrLen int64, err error) {
	n := min(int64(len(hdr)), size-off)
	if n < mp4io.HeaderSize {
		err = &mp4io.ParseError{Debug: "header", Offset: int(off), Err: pio.ErrUnexpectedEndOfData}
		return
	}
	if _, err = f.ReadAt(hdr[:n], off); err != nil {
		return
	}
	tag = mp4io.Tag(pio.U32BE(hdr[4:]))
	hdrLen = mp4io.HeaderSize
	switch sz := pio.U32BE(hdr); sz {
	case 0:
		boxSize = size - off
	case 1:
		if n < mp4io.LargeHeaderSize {
			err = &mp4io.ParseError{Tag: tag, Debug: "largesize", Offset: int(off), Err: pio.ErrUnexpectedEndOfData}
			return
		}
		boxSize = int64(pio.U64BE(hdr[8:])) //nolint:gosec // checked against the file size below
		hdrLen = mp4io.LargeHeaderSize
	default:
		boxSize = int64(sz)
	}
	if boxSize < hdrLen || boxSize > size-off {
		err = &mp4io.ParseError{Tag: tag, Debug: "size", Offset: int(off)}
	}
	return
}

func (file *File) mapMediaData(f *os.File, off, boxSize, hdrLen int64) error {
	region, err := buffer.NewMmapRegion(f, off+hdrLen, int(boxSize-hdrLen))
	if err != nil {
		return err
	}
	file.owners = append(file.owners, region)
	md := &mp4io.MediaData{
		Data:      region.Data(),
		LargeSize: hdrLen == mp4io.LargeHeaderSize,
		AtomPos:   mp4io.AtomPos{Offset: int(off), Size: int(boxSize)},
	}
	file.state.mapped[md] = region
	file.Atoms = append(file.Atoms, md)
	logger.Debugf(file, "mapped mdat payload of %d bytes at %d", boxSize-hdrLen, off)
	return nil
}

func (file *File) readBox(f *os.File, off, boxSize int64) error {
	buf := buffer.Get(int(boxSize))
	file.owners = append(file.owners, buf)
	if _, err := f.ReadAt(buf.Data(), off); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("mp4: reading box at %d: %w", off, io.ErrUnexpectedEOF)
		}
		return err
	}
	atoms, err := mp4io.ReadAtoms(buf.Data(), int(off))
	if err != nil {
		return err
	}
	file.Atoms = append(file.Atoms, atoms...)
	return nil
}

func (file *File) String() string {
	return fmt.Sprintf("MP4_FILE %s", file.state.name)
}

// Movie returns the moov box, or nil.
func (file *File) Movie() *mp4io.Movie {
	for _, atom := range file.Atoms {
		if moov, ok := atom.(*mp4io.Movie); ok {
			return moov
		}
	}
	return nil
}

// Tracks returns every track of the file in moov order.
func (file *File) Tracks() ([]*Track, error) {
	moov := file.Movie()
	if moov == nil {
		return nil, ErrNoMovie
	}
	tracks := make([]*Track, 0, len(moov.Tracks()))
	for _, trak := range moov.Tracks() {
		t, err := NewTrack(file.Atoms, trak)
		if err != nil {
			return nil, fmt.Errorf("mp4: track %d: %w", len(tracks)+1, err)
		}
		t.samples.file = file.state
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// Close releases the memory and mappings backing the parsed boxes. Mappings
// held by retained sample lists stay until those are released.
func (file *File) Close() {
	file.state.closed.Store(true)
	for _, owner := range slices.Backward(file.owners) {
		owner.Release()
	}
	file.owners = nil
	file.Atoms = nil
}
