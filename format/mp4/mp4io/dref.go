package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20)

	URLSelfContained = 0x000001
)

// DataRefer is the dref box: a full box header, an entry count and the entries.
type DataRefer struct {
	Version uint8
	Flags   uint32
	Container
	AtomPos
}

func (d *DataRefer) Tag() Tag {
	return DREF
}

func (d *DataRefer) Len() int {
	return FullHeaderSize + 4 + d.contentLen()
}

func (d *DataRefer) Marshal(b []byte) (n int) {
	n = putFullHeader(b, DREF, d.Len(), d.Version, d.Flags)
	pio.PutU32BE(b[n:], uint32(len(d.Boxes)))
	n += 4
	n += d.marshalContent(b[n:])
	return
}

func (d *DataRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	d.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, d.Version, d.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if _, err = r.ReadU32(); err != nil {
		return 0, fieldErr("EntryCount", offset, r, err)
	}
	start := len(b) - r.Remaining()
	if d.Boxes, d.Padding, err = readAtoms(b[start:], offset+start); err != nil {
		return
	}
	return len(b), nil
}

// DataReferUrl is a url entry of dref. Location is empty for self contained media.
type DataReferUrl struct {
	Version  uint8
	Flags    uint32
	Location []byte
	AtomPos
}

func (u *DataReferUrl) Tag() Tag {
	return URL
}

func (u *DataReferUrl) Len() int {
	return FullHeaderSize + len(u.Location)
}

func (u *DataReferUrl) Marshal(b []byte) (n int) {
	n = putFullHeader(b, URL, u.Len(), u.Version, u.Flags)
	n += copy(b[n:], u.Location)
	return
}

func (u *DataReferUrl) Unmarshal(b []byte, offset int) (n int, err error) {
	u.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, u.Version, u.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	u.Location, _ = r.ReadBytes(r.Remaining())
	return len(b), nil
}

func (*DataReferUrl) Children() []Atom {
	return nil
}
