package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
)

// ChunkOffset is the stco box.
type ChunkOffset struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (c *ChunkOffset) Tag() Tag {
	return STCO
}

func (c *ChunkOffset) Len() int {
	return FullHeaderSize + 4 + 4*len(c.Entries)
}

func (c *ChunkOffset) Marshal(b []byte) (n int) {
	n = putFullHeader(b, STCO, c.Len(), c.Version, c.Flags)
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, e := range c.Entries {
		pio.PutU32BE(b[n:], e)
		n += 4
	}
	return
}

func (c *ChunkOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	c.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, c.Version, c.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, 4, offset); err != nil {
		return
	}
	c.Entries = make([]uint32, count)
	for i := range c.Entries {
		c.Entries[i], _ = r.ReadU32()
	}
	return len(b), nil
}

func (*ChunkOffset) Children() []Atom {
	return nil
}

func (c *ChunkOffset) String() string {
	return fmt.Sprintf("entries=%d", len(c.Entries))
}

// ChunkLargeOffset is the co64 box.
type ChunkLargeOffset struct {
	Version uint8
	Flags   uint32
	Entries []uint64
	AtomPos
}

func (c *ChunkLargeOffset) Tag() Tag {
	return CO64
}

func (c *ChunkLargeOffset) Len() int {
	return FullHeaderSize + 4 + 8*len(c.Entries)
}

func (c *ChunkLargeOffset) Marshal(b []byte) (n int) {
	n = putFullHeader(b, CO64, c.Len(), c.Version, c.Flags)
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, e := range c.Entries {
		pio.PutU64BE(b[n:], e)
		n += 8
	}
	return
}

func (c *ChunkLargeOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	c.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, c.Version, c.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	var count int
	if count, err = readCount(r, 8, offset); err != nil {
		return
	}
	c.Entries = make([]uint64, count)
	for i := range c.Entries {
		c.Entries[i], _ = r.ReadU64()
	}
	return len(b), nil
}

func (*ChunkLargeOffset) Children() []Atom {
	return nil
}

func (c *ChunkLargeOffset) String() string {
	return fmt.Sprintf("entries=%d", len(c.Entries))
}
