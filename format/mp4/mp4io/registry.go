package mp4io

import (
	"io"

	"github.com/ugparu/gomp4/utils/logger"
)

var registry map[Tag]func() Atom

func init() {
	registry = map[Tag]func() Atom{
		FTYP: func() Atom { return &FileType{} },
		STYP: func() Atom { return &FileType{Segment: true} },
		FREE: func() Atom { return &FreeSpace{} },
		SKIP: func() Atom { return &FreeSpace{Skip: true} },
		MDAT: func() Atom { return &MediaData{} },
		SIDX: func() Atom { return &SegmentIndex{} },

		MOOV: func() Atom { return &Movie{} },
		MVHD: func() Atom { return &MovieHeader{} },
		TRAK: func() Atom { return &Track{} },
		TKHD: func() Atom { return &TrackHeader{} },
		EDTS: func() Atom { return &Edit{} },
		MDIA: func() Atom { return &Media{} },
		MDHD: func() Atom { return &MediaHeader{} },
		HDLR: func() Atom { return &HandlerRefer{} },
		MINF: func() Atom { return &MediaInfo{} },
		VMHD: func() Atom { return &VideoMediaInfo{} },
		SMHD: func() Atom { return &SoundMediaInfo{} },
		DINF: func() Atom { return &DataInfo{} },
		DREF: func() Atom { return &DataRefer{} },
		URL:  func() Atom { return &DataReferUrl{} },

		STBL: func() Atom { return &SampleTable{} },
		STSD: func() Atom { return &SampleDesc{} },
		AVC1: func() Atom { return &VisualSampleEntry{Format: AVC1} },
		AVC3: func() Atom { return &VisualSampleEntry{Format: AVC3} },
		HEV1: func() Atom { return &VisualSampleEntry{Format: HEV1} },
		HVC1: func() Atom { return &VisualSampleEntry{Format: HVC1} },
		MP4V: func() Atom { return &VisualSampleEntry{Format: MP4V} },
		AVCC: func() Atom { return &AVC1Conf{} },
		MP4A: func() Atom { return &MP4ADesc{} },
		ESDS: func() Atom { return &ElemStreamDesc{} },
		STTS: func() Atom { return &TimeToSample{} },
		CTTS: func() Atom { return &CompositionOffset{} },
		STSC: func() Atom { return &SampleToChunk{} },
		STSZ: func() Atom { return &SampleSize{} },
		STCO: func() Atom { return &ChunkOffset{} },
		CO64: func() Atom { return &ChunkLargeOffset{} },
		STSS: func() Atom { return &SyncSample{} },
		SDTP: func() Atom { return &SampleDependency{} },
		SUBS: func() Atom { return &SubSampleInfo{} },

		MVEX: func() Atom { return &MovieExtend{} },
		TREX: func() Atom { return &TrackExtend{} },
		MOOF: func() Atom { return &MovieFrag{} },
		MFHD: func() Atom { return &MovieFragHeader{} },
		TRAF: func() Atom { return &TrackFrag{} },
		TFHD: func() Atom { return &TrackFragHeader{} },
		TFDT: func() Atom { return &TrackFragDecodeTime{} },
		TRUN: func() Atom { return &TrackFragRun{} },
	}
}

// NewAtom returns an empty box for tag, or a *Dummy when the tag has no codec.
func NewAtom(tag Tag) Atom {
	if f, ok := registry[tag]; ok {
		return f()
	}
	return &Dummy{Tag_: tag}
}

// readAtoms parses the sequence of boxes in b. offset is the absolute offset of b[0].
// Fewer than HeaderSize zero bytes at the end are returned as pad.
func readAtoms(b []byte, offset int) (atoms []Atom, pad []byte, err error) {
	n := 0
	for n < len(b) {
		if len(b)-n < HeaderSize && allZero(b[n:]) {
			pad = b[n:]
			logger.Warningf("mp4io", "%d zero bytes of padding at %d", len(pad), offset+n)
			return
		}
		var (
			tag  Tag
			size int
		)
		if tag, size, _, err = readHeader(b[n:], offset+n); err != nil {
			return
		}
		atom := NewAtom(tag)
		if _, ok := atom.(*Dummy); ok {
			logger.Tracef("mp4io", "no codec for '%s' at %d, kept as raw", tag, offset+n)
		}
		if _, err = atom.Unmarshal(b[n:n+size], offset+n); err != nil {
			err = boxErr(tag, offset+n, err)
			return
		}
		atoms = append(atoms, atom)
		n += size
	}
	return
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ReadAtoms parses the top-level boxes of a file held in b. base is the absolute
// offset of b[0] and is usually 0. Payloads such as mdat alias b.
func ReadAtoms(b []byte, base int) (atoms []Atom, err error) {
	atoms, _, err = readAtoms(b, base)
	return
}

// MarshalAtom serializes a single box.
func MarshalAtom(a Atom) []byte {
	b := make([]byte, a.Len())
	a.Marshal(b)
	return b
}

// WriteAtoms writes the boxes to w. Media data payloads are written without being copied.
func WriteAtoms(w io.Writer, atoms ...Atom) (n int64, err error) {
	var m int
	for _, atom := range atoms {
		if md, ok := atom.(*MediaData); ok {
			hdr := make([]byte, LargeHeaderSize)
			hdr = hdr[:putHeader(hdr, MDAT, md.Len(), md.large())]
			if m, err = w.Write(hdr); err != nil {
				return
			}
			n += int64(m)
			if m, err = w.Write(md.Data); err != nil {
				return
			}
			n += int64(m)
			continue
		}
		if m, err = w.Write(MarshalAtom(atom)); err != nil {
			return
		}
		n += int64(m)
	}
	return
}

// ParentIndex maps every box below roots to its parent.
func ParentIndex(roots ...Atom) map[Atom]Atom {
	idx := map[Atom]Atom{}
	var walk func(parent Atom)
	walk = func(parent Atom) {
		for _, child := range parent.Children() {
			idx[child] = parent
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return idx
}
