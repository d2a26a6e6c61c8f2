package mp4io

import "fmt"

const MDAT = Tag(0x6d646174)

// MediaData is the mdat box. Data aliases the buffer the box was parsed from.
type MediaData struct {
	Data      []byte
	LargeSize bool
	AtomPos
}

func (m *MediaData) Tag() Tag {
	return MDAT
}

func (m *MediaData) large() bool {
	return needsLarge(len(m.Data), m.LargeSize)
}

func (m *MediaData) HeaderLen() int {
	return boxHeaderLen(len(m.Data), m.LargeSize)
}

func (m *MediaData) Len() int {
	return m.HeaderLen() + len(m.Data)
}

func (m *MediaData) Marshal(b []byte) (n int) {
	n = putHeader(b, MDAT, m.Len(), m.large())
	n += copy(b[n:], m.Data)
	return
}

func (m *MediaData) Unmarshal(b []byte, offset int) (n int, err error) {
	m.AtomPos.setPos(offset, len(b))
	hdr := headerLen(b)
	m.LargeSize = hdr == LargeHeaderSize
	m.Data = b[hdr:]
	return len(b), nil
}

// DataOffset returns the absolute offset of the first payload byte.
func (m *MediaData) DataOffset() int {
	return m.Offset + m.HeaderLen()
}

func (*MediaData) Children() []Atom {
	return nil
}

func (m *MediaData) String() string {
	return fmt.Sprintf("payload=%d", len(m.Data))
}
