package mp4io

const MOOV = Tag(0x6d6f6f76)

// Movie is the moov box.
type Movie struct {
	Container
	AtomPos
}

func (m *Movie) Tag() Tag {
	return MOOV
}

func (m *Movie) Len() int {
	return m.lenBox()
}

func (m *Movie) Marshal(b []byte) int {
	return m.marshalBox(b, MOOV)
}

func (m *Movie) Unmarshal(b []byte, offset int) (int, error) {
	return m.unmarshalBox(b, offset, &m.AtomPos)
}

func (m *Movie) Header() *MovieHeader {
	if m == nil {
		return nil
	}
	return childOf[*MovieHeader](&m.Container)
}

func (m *Movie) Tracks() []*Track {
	if m == nil {
		return nil
	}
	return childrenOf[*Track](&m.Container)
}

func (m *Movie) Extend() *MovieExtend {
	if m == nil {
		return nil
	}
	return childOf[*MovieExtend](&m.Container)
}

// TrackByID returns the trak whose tkhd carries id.
func (m *Movie) TrackByID(id uint32) *Track {
	for _, t := range m.Tracks() {
		if h := t.Header(); h != nil && h.TrackID == id {
			return t
		}
	}
	return nil
}
