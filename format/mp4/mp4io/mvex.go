package mp4io

const MVEX = Tag(0x6d766578)

// MovieExtend is the mvex box.
type MovieExtend struct {
	Container
	AtomPos
}

func (m *MovieExtend) Tag() Tag {
	return MVEX
}

func (m *MovieExtend) Len() int {
	return m.lenBox()
}

func (m *MovieExtend) Marshal(b []byte) int {
	return m.marshalBox(b, MVEX)
}

func (m *MovieExtend) Unmarshal(b []byte, offset int) (int, error) {
	return m.unmarshalBox(b, offset, &m.AtomPos)
}

// TrackExtend returns the trex of the given track.
func (m *MovieExtend) TrackExtend(trackID uint32) *TrackExtend {
	if m == nil {
		return nil
	}
	for _, trex := range childrenOf[*TrackExtend](&m.Container) {
		if trex.TrackID == trackID {
			return trex
		}
	}
	return nil
}
