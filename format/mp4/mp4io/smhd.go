package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	SMHD = Tag(0x736d6864)
	VMHD = Tag(0x766d6864)
	HMHD = Tag(0x686d6864)
	NMHD = Tag(0x6e6d6864)
	STHD = Tag(0x73746864)
)

// SoundMediaInfo is the smhd box.
type SoundMediaInfo struct {
	Version uint8
	Flags   uint32
	Balance int16
	AtomPos
}

func (s *SoundMediaInfo) Tag() Tag {
	return SMHD
}

func (s *SoundMediaInfo) Len() int {
	return FullHeaderSize + 4
}

func (s *SoundMediaInfo) Marshal(b []byte) (n int) {
	n = putFullHeader(b, SMHD, s.Len(), s.Version, s.Flags)
	pio.PutI16BE(b[n:], s.Balance)
	pio.PutU16BE(b[n+2:], 0)
	return n + 4
}

func (s *SoundMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	s.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, s.Version, s.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var v uint16
	if v, err = r.ReadU16(); err != nil {
		return 0, fieldErr("Balance", offset, r, err)
	}
	s.Balance = int16(v)
	return len(b), nil
}

func (*SoundMediaInfo) Children() []Atom {
	return nil
}

// VideoMediaInfo is the vmhd box. Its flags are 1 by definition.
type VideoMediaInfo struct {
	Version      uint8
	Flags        uint32
	GraphicsMode uint16
	Opcolor      [3]uint16
	AtomPos
}

func NewVideoMediaInfo() *VideoMediaInfo {
	return &VideoMediaInfo{Flags: 1}
}

func (v *VideoMediaInfo) Tag() Tag {
	return VMHD
}

func (v *VideoMediaInfo) Len() int {
	return FullHeaderSize + 8
}

func (v *VideoMediaInfo) Marshal(b []byte) (n int) {
	n = putFullHeader(b, VMHD, v.Len(), v.Version, v.Flags)
	pio.PutU16BE(b[n:], v.GraphicsMode)
	n += 2
	for _, c := range v.Opcolor {
		pio.PutU16BE(b[n:], c)
		n += 2
	}
	return
}

func (v *VideoMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	v.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, v.Version, v.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if v.GraphicsMode, err = r.ReadU16(); err != nil {
		return 0, fieldErr("GraphicsMode", offset, r, err)
	}
	for i := range v.Opcolor {
		if v.Opcolor[i], err = r.ReadU16(); err != nil {
			return 0, fieldErr("Opcolor", offset, r, err)
		}
	}
	return len(b), nil
}

func (*VideoMediaInfo) Children() []Atom {
	return nil
}
