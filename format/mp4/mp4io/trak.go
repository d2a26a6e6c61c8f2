package mp4io

const (
	TRAK = Tag(0x7472616b)
	EDTS = Tag(0x65647473)
)

// Track is the trak box.
type Track struct {
	Container
	AtomPos
}

func (t *Track) Tag() Tag {
	return TRAK
}

func (t *Track) Len() int {
	return t.lenBox()
}

func (t *Track) Marshal(b []byte) int {
	return t.marshalBox(b, TRAK)
}

func (t *Track) Unmarshal(b []byte, offset int) (int, error) {
	return t.unmarshalBox(b, offset, &t.AtomPos)
}

func (t *Track) Header() *TrackHeader {
	if t == nil {
		return nil
	}
	return childOf[*TrackHeader](&t.Container)
}

func (t *Track) Media() *Media {
	if t == nil {
		return nil
	}
	return childOf[*Media](&t.Container)
}

// SampleTable walks trak/mdia/minf/stbl.
func (t *Track) SampleTable() *SampleTable {
	return t.Media().Info().SampleTable()
}

func (t *Track) GetAVC1Conf() (conf *AVC1Conf) {
	conf, _ = FindChildren(t, AVCC).(*AVC1Conf)
	return
}

func (t *Track) GetElemStreamDesc() (esds *ElemStreamDesc) {
	esds, _ = FindChildren(t, ESDS).(*ElemStreamDesc)
	return
}

// Edit is the edts box. Its elst child is kept raw.
type Edit struct {
	Container
	AtomPos
}

func (e *Edit) Tag() Tag {
	return EDTS
}

func (e *Edit) Len() int {
	return e.lenBox()
}

func (e *Edit) Marshal(b []byte) int {
	return e.marshalBox(b, EDTS)
}

func (e *Edit) Unmarshal(b []byte, offset int) (int, error) {
	return e.unmarshalBox(b, offset, &e.AtomPos)
}
