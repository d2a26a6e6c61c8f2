package mp4io

import (
	"fmt"
	"strings"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	FTYP                = Tag(0x66747970)
	STYP                = Tag(0x73747970)
	baseFtypSize        = 16
	bytesPerBrand       = 4
	defaultMinorVersion = 0x200
)

// NewFileType returns the ftyp written for plain ISO files carrying AVC and AAC tracks.
func NewFileType() *FileType {
	return &FileType{
		MajorBrand:   StringToTag("isom"),
		MinorVersion: defaultMinorVersion,
		CompatibleBrands: []Tag{
			StringToTag("isom"),
			StringToTag("iso2"),
			StringToTag("avc1"),
			StringToTag("mp41"),
		},
	}
}

// FileType is the ftyp box, or styp when Segment is set.
type FileType struct {
	Segment          bool
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
	AtomPos
}

func (f *FileType) Tag() Tag {
	if f.Segment {
		return STYP
	}
	return FTYP
}

func (f *FileType) Marshal(b []byte) (n int) {
	l := f.Len()
	putHeader(b, f.Tag(), l, false)
	pio.PutU32BE(b[8:], uint32(f.MajorBrand))
	pio.PutU32BE(b[12:], f.MinorVersion)
	for i, v := range f.CompatibleBrands {
		pio.PutU32BE(b[baseFtypSize+bytesPerBrand*i:], uint32(v))
	}
	return l
}

func (f *FileType) Len() int {
	return baseFtypSize + bytesPerBrand*len(f.CompatibleBrands)
}

func (f *FileType) Unmarshal(b []byte, offset int) (n int, err error) {
	f.AtomPos.setPos(offset, len(b))
	n = headerLen(b)
	if len(b) < n+8 {
		return 0, parseErr("MajorBrand", offset+n, pio.ErrUnexpectedEndOfData)
	}
	f.MajorBrand = Tag(pio.U32BE(b[n:]))
	n += 4
	f.MinorVersion = pio.U32BE(b[n:])
	n += 4
	f.CompatibleBrands = f.CompatibleBrands[:0]
	for n+bytesPerBrand <= len(b) {
		f.CompatibleBrands = append(f.CompatibleBrands, Tag(pio.U32BE(b[n:])))
		n += bytesPerBrand
	}
	if n != len(b) {
		return 0, parseErr("CompatibleBrands", offset+n, nil)
	}
	return
}

func (*FileType) Children() []Atom {
	return nil
}

func (f *FileType) String() string {
	brands := make([]string, len(f.CompatibleBrands))
	for i, b := range f.CompatibleBrands {
		brands[i] = b.String()
	}
	return fmt.Sprintf("major=%s minor=%d compatible=%s", f.MajorBrand, f.MinorVersion, strings.Join(brands, ","))
}
