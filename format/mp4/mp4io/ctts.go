package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const CTTS = Tag(0x63747473)

// CompositionOffsetEntry is a run of samples sharing a composition offset.
// Version 0 boxes store the offset unsigned; it is carried as the same 32 bits.
type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

const LenCompositionOffsetEntry = 8

// CompositionOffset is the ctts box.
type CompositionOffset struct {
	Version uint8
	Flags   uint32
	Entries []CompositionOffsetEntry
	AtomPos
}

func (c *CompositionOffset) Tag() Tag {
	return CTTS
}

func (c *CompositionOffset) Len() int {
	return FullHeaderSize + 4 + LenCompositionOffsetEntry*len(c.Entries)
}

func (c *CompositionOffset) Marshal(b []byte) (n int) {
	n = putFullHeader(b, CTTS, c.Len(), c.Version, c.Flags)
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, e := range c.Entries {
		pio.PutU32BE(b[n:], e.Count)
		pio.PutI32BE(b[n+4:], e.Offset)
		n += LenCompositionOffsetEntry
	}
	return
}

func (c *CompositionOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	c.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, c.Version, c.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, LenCompositionOffsetEntry, offset); err != nil {
		return
	}
	c.Entries = make([]CompositionOffsetEntry, count)
	for i := range c.Entries {
		c.Entries[i].Count, _ = r.ReadU32()
		v, _ := r.ReadU32()
		c.Entries[i].Offset = int32(v)
	}
	return len(b), nil
}

func (*CompositionOffset) Children() []Atom {
	return nil
}

func (c *CompositionOffset) String() string {
	return fmt.Sprintf("entries=%d", len(c.Entries))
}
