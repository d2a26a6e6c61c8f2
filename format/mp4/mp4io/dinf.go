package mp4io

const DINF = Tag(0x64696e66)

// DataInfo is the dinf box.
type DataInfo struct {
	Container
	AtomPos
}

func (d *DataInfo) Tag() Tag {
	return DINF
}

func (d *DataInfo) Len() int {
	return d.lenBox()
}

func (d *DataInfo) Marshal(b []byte) int {
	return d.marshalBox(b, DINF)
}

func (d *DataInfo) Unmarshal(b []byte, offset int) (int, error) {
	return d.unmarshalBox(b, offset, &d.AtomPos)
}

// NewSelfContainedDataInfo returns a dinf with a single self-contained url entry.
func NewSelfContainedDataInfo() *DataInfo {
	dref := &DataRefer{}
	dref.Add(&DataReferUrl{Flags: URLSelfContained})
	dinf := &DataInfo{}
	dinf.Add(dref)
	return dinf
}
