package mp4io

const TRAF = Tag(0x74726166)

// TrackFrag is the traf box.
type TrackFrag struct {
	Container
	AtomPos
}

func (t *TrackFrag) Tag() Tag {
	return TRAF
}

func (t *TrackFrag) Len() int {
	return t.lenBox()
}

func (t *TrackFrag) Marshal(b []byte) int {
	return t.marshalBox(b, TRAF)
}

func (t *TrackFrag) Unmarshal(b []byte, offset int) (int, error) {
	return t.unmarshalBox(b, offset, &t.AtomPos)
}

func (t *TrackFrag) Header() *TrackFragHeader {
	return childOf[*TrackFragHeader](&t.Container)
}

func (t *TrackFrag) DecodeTime() *TrackFragDecodeTime {
	return childOf[*TrackFragDecodeTime](&t.Container)
}

func (t *TrackFrag) Runs() []*TrackFragRun {
	return childrenOf[*TrackFragRun](&t.Container)
}
