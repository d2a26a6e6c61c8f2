package mp4io

const MINF = Tag(0x6d696e66)

// MediaInfo is the minf box.
type MediaInfo struct {
	Container
	AtomPos
}

func (m *MediaInfo) Tag() Tag {
	return MINF
}

func (m *MediaInfo) Len() int {
	return m.lenBox()
}

func (m *MediaInfo) Marshal(b []byte) int {
	return m.marshalBox(b, MINF)
}

func (m *MediaInfo) Unmarshal(b []byte, offset int) (int, error) {
	return m.unmarshalBox(b, offset, &m.AtomPos)
}

func (m *MediaInfo) SampleTable() *SampleTable {
	if m == nil {
		return nil
	}
	return childOf[*SampleTable](&m.Container)
}

func (m *MediaInfo) Data() *DataInfo {
	if m == nil {
		return nil
	}
	return childOf[*DataInfo](&m.Container)
}

// MediaHeaderBox returns the media type specific header (vmhd, smhd or a raw hmhd/nmhd).
func (m *MediaInfo) MediaHeaderBox() Atom {
	if m == nil {
		return nil
	}
	for _, child := range m.Boxes {
		switch child.Tag() {
		case VMHD, SMHD, HMHD, NMHD, STHD:
			return child
		}
	}
	return nil
}
