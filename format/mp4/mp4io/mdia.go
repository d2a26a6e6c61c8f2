package mp4io

const MDIA = Tag(0x6d646961)

// Media is the mdia box.
type Media struct {
	Container
	AtomPos
}

func (m *Media) Tag() Tag {
	return MDIA
}

func (m *Media) Len() int {
	return m.lenBox()
}

func (m *Media) Marshal(b []byte) int {
	return m.marshalBox(b, MDIA)
}

func (m *Media) Unmarshal(b []byte, offset int) (int, error) {
	return m.unmarshalBox(b, offset, &m.AtomPos)
}

func (m *Media) Header() *MediaHeader {
	if m == nil {
		return nil
	}
	return childOf[*MediaHeader](&m.Container)
}

func (m *Media) Handler() *HandlerRefer {
	if m == nil {
		return nil
	}
	return childOf[*HandlerRefer](&m.Container)
}

func (m *Media) Info() *MediaInfo {
	if m == nil {
		return nil
	}
	return childOf[*MediaInfo](&m.Container)
}
