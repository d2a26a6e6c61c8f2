package mp4

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ugparu/gomp4"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
	"github.com/ugparu/gomp4/utils/buffer"
	"github.com/ugparu/gomp4/utils/logger"
)

var ErrSampleNotInAnyRegion = errors.New("mp4: sample not in any mdat")

// SampleNotInAnyRegionError reports a sample whose byte range lies outside every mdat payload.
type SampleNotInAnyRegionError struct {
	Offset int64
	Size   uint32
}

func (e *SampleNotInAnyRegionError) Error() string {
	return fmt.Sprintf("mp4: sample at %d (%d bytes) not in any mdat", e.Offset, e.Size)
}

func (e *SampleNotInAnyRegionError) Is(target error) bool {
	return target == ErrSampleNotInAnyRegion
}

// Region is the payload of one mdat: file bytes [Start, End) held in Data.
type Region struct {
	Start int64
	End   int64
	Data  []byte

	box *mp4io.MediaData
}

func (r Region) contains(offset int64, size uint32) bool {
	return offset >= r.Start && offset+int64(size) <= r.End
}

// Regions lists the mdat payloads of a file's top-level boxes in file order.
func Regions(atoms []mp4io.Atom) (regions []Region) {
	for i, start := range boxOffsets(atoms) {
		md, ok := atoms[i].(*mp4io.MediaData)
		if !ok {
			continue
		}
		end := start + boxSize(md)
		regions = append(regions, Region{Start: end - int64(len(md.Data)), End: end, Data: md.Data, box: md})
	}
	return
}

// boxSize is the size a parsed box had in its file, or the marshaled length of
// a box built in memory.
func boxSize(atom mp4io.Atom) int64 {
	if _, size := atom.Pos(); size > 0 {
		return int64(size)
	}
	return int64(atom.Len())
}

// boxOffsets returns the file offset of every top-level box. Parsed boxes keep
// the offset they were read at; boxes built in memory follow their predecessor.
func boxOffsets(atoms []mp4io.Atom) []int64 {
	offsets := make([]int64, len(atoms))
	var off int64
	for i, atom := range atoms {
		if pos, size := atom.Pos(); size > 0 {
			off = int64(pos)
		}
		offsets[i] = off
		off += boxSize(atom)
	}
	return offsets
}

// SampleList maps sample numbers of one track to byte ranges inside mdat payloads.
// Samples are numbered in file offset order; classic chunk tables and movie
// fragments feed the same index.
type SampleList struct {
	regions []Region
	sizes   map[int64]uint32

	once    sync.Once
	offsets []int64

	file  *fileState // nil when the boxes were not read by Open
	kept  []Region   // set by Retain
	views []buffer.PooledBuffer
}

// NewSampleList indexes the samples of trak. atoms are the top-level boxes of the file trak belongs to.
func NewSampleList(atoms []mp4io.Atom, trak *mp4io.Track) (*SampleList, error) {
	l := &SampleList{
		regions: Regions(atoms),
		sizes:   map[int64]uint32{},
	}
	if err := l.addChunks(trak.SampleTable()); err != nil {
		return nil, err
	}

	var (
		moov    *mp4io.Movie
		trackID uint32
	)
	if hdr := trak.Header(); hdr != nil {
		trackID = hdr.TrackID
	}
	for _, atom := range atoms {
		if mv, ok := atom.(*mp4io.Movie); ok {
			moov = mv
			break
		}
	}
	var trex *mp4io.TrackExtend
	if moov != nil {
		trex = moov.Extend().TrackExtend(trackID)
	}

	for i, off := range boxOffsets(atoms) {
		if moof, ok := atoms[i].(*mp4io.MovieFrag); ok {
			if err := l.addFragment(moof, off, trackID, trex); err != nil {
				return nil, err
			}
		}
	}

	logger.Debugf(l, "track %d: %d samples in %d mdat regions", trackID, len(l.sizes), len(l.regions))
	return l, nil
}

func (l *SampleList) insert(offset int64, size uint32, box mp4io.Atom) error {
	if _, dup := l.sizes[offset]; dup {
		boxOffset, _ := box.Pos()
		return &mp4io.ParseError{
			Tag:    box.Tag(),
			Debug:  box.Tag().String(),
			Offset: boxOffset,
			Err:    fmt.Errorf("duplicate sample offset %d", offset),
		}
	}
	l.sizes[offset] = size
	return nil
}

func (l *SampleList) addChunks(stbl *mp4io.SampleTable) error {
	chunks := stbl.ChunkOffsets()
	stsz := stbl.SampleSize()
	stsc := stbl.SampleToChunk()
	if len(chunks) == 0 || stsz == nil || stsc == nil {
		return nil
	}
	box := stbl.ChunkOffsetBox()

	sample := 0
	for c, perChunk := range stsc.SamplesPerChunk(len(chunks)) {
		offset := int64(chunks[c]) //nolint:gosec // file offsets fit int64
		for range perChunk {
			if sample >= stsz.Count() {
				return &mp4io.ParseError{
					Tag:    mp4io.STSZ,
					Debug:  mp4io.STSZ.String(),
					Offset: stsz.Offset,
					Err:    fmt.Errorf("chunk %d needs sample %d, stsz has %d", c+1, sample+1, stsz.Count()),
				}
			}
			size := stsz.Size(sample)
			if err := l.insert(offset, size, box); err != nil {
				return err
			}
			offset += int64(size)
			sample++
		}
	}
	if sample < stsz.Count() {
		logger.Warningf(l, "stsz lists %d samples, chunks hold %d", stsz.Count(), sample)
	}
	return nil
}

func (l *SampleList) addFragment(moof *mp4io.MovieFrag, moofOffset int64, trackID uint32, trex *mp4io.TrackExtend) error {
	for _, traf := range moof.Tracks() {
		tfhd := traf.Header()
		if tfhd == nil || tfhd.TrackID != trackID {
			continue
		}
		base := moofOffset
		if tfhd.Flags&mp4io.TFHDBaseDataOffset != 0 {
			base = int64(tfhd.BaseDataOffset) //nolint:gosec // file offsets fit int64
		}
		for _, trun := range traf.Runs() {
			offset := base + int64(trun.DataOffset)
			for i := range trun.Entries {
				size := trun.SampleSize(i, tfhd, trex)
				if err := l.insert(offset, size, trun); err != nil {
					return err
				}
				offset += int64(size)
			}
		}
	}
	return nil
}

func (l *SampleList) sorted() []int64 {
	l.once.Do(func() {
		l.offsets = make([]int64, 0, len(l.sizes))
		for off := range l.sizes {
			l.offsets = append(l.offsets, off)
		}
		slices.Sort(l.offsets)
	})
	return l.offsets
}

func (l *SampleList) String() string {
	return "MP4_SAMPLE_LIST"
}

func (l *SampleList) Len() int {
	return len(l.sizes)
}

// Offset returns the absolute file offset of sample i, or -1 outside [0, Len()).
func (l *SampleList) Offset(i int) int64 {
	if i < 0 || i >= l.Len() {
		return -1
	}
	return l.sorted()[i]
}

func (l *SampleList) Size(i int) int {
	if i < 0 || i >= l.Len() {
		return 0
	}
	return int(l.sizes[l.Offset(i)])
}

// Get returns sample i as a view into the mdat payload that holds it. Once the
// file is closed Get fails with buffer.ErrRegionReleased unless the list was retained.
func (l *SampleList) Get(i int) ([]byte, error) {
	if i < 0 || i >= l.Len() {
		return nil, fmt.Errorf("%w: %d of %d", gomp4.ErrSampleOutOfRange, i, l.Len())
	}
	regions, err := l.source()
	if err != nil {
		return nil, err
	}
	offset := l.Offset(i)
	size := l.sizes[offset]
	for _, r := range regions {
		if r.contains(offset, size) {
			start := offset - r.Start
			return r.Data[start : start+int64(size)], nil
		}
	}
	return nil, &SampleNotInAnyRegionError{Offset: offset, Size: size}
}

func (l *SampleList) source() ([]Region, error) {
	if l.kept != nil {
		return l.kept, nil
	}
	if l.file != nil && l.file.closed.Load() {
		return nil, fmt.Errorf("mp4: %s closed: %w", l.file.name, buffer.ErrRegionReleased)
	}
	return l.regions, nil
}

// Retain keeps the samples readable after the file is closed. Mapped mdat
// payloads stay mapped until Release, payloads read into memory are copied.
// Retain and Release must not run concurrently with Get.
func (l *SampleList) Retain() error {
	if l.kept != nil || l.file == nil {
		return nil
	}
	if l.file.closed.Load() {
		return fmt.Errorf("mp4: %s closed: %w", l.file.name, buffer.ErrRegionReleased)
	}

	kept := make([]Region, len(l.regions))
	copy(kept, l.regions)
	for i, r := range kept {
		mapped := l.file.mapped[r.box]
		if mapped == nil {
			kept[i].Data = bytes.Clone(r.Data)
			continue
		}
		view, err := mapped.View(0, len(mapped.Data()))
		if err != nil {
			l.releaseViews()
			return err
		}
		l.views = append(l.views, view)
		kept[i].Data = view.Data()
	}
	l.kept = kept
	logger.Debugf(l, "retained %d regions, %d mapped", len(kept), len(l.views))
	return nil
}

// Release drops what Retain kept. Slices returned by Get since Retain must not be used afterwards.
func (l *SampleList) Release() {
	l.releaseViews()
	l.kept = nil
}

func (l *SampleList) releaseViews() {
	for _, v := range l.views {
		v.Release()
	}
	l.views = nil
}

var _ gomp4.Samples = (*SampleList)(nil)
