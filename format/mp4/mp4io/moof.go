package mp4io

const MOOF = Tag(0x6d6f6f66)

// MovieFrag is the moof box.
type MovieFrag struct {
	Container
	AtomPos
}

func (m *MovieFrag) Tag() Tag {
	return MOOF
}

func (m *MovieFrag) Len() int {
	return m.lenBox()
}

func (m *MovieFrag) Marshal(b []byte) int {
	return m.marshalBox(b, MOOF)
}

func (m *MovieFrag) Unmarshal(b []byte, offset int) (int, error) {
	return m.unmarshalBox(b, offset, &m.AtomPos)
}

func (m *MovieFrag) Header() *MovieFragHeader {
	return childOf[*MovieFragHeader](&m.Container)
}

func (m *MovieFrag) Tracks() []*TrackFrag {
	return childrenOf[*TrackFrag](&m.Container)
}
