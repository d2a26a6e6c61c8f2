package mp4io

import "fmt"

const (
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
)

// FreeSpace is a free or skip box. Its payload is kept so it is written back unchanged.
type FreeSpace struct {
	Skip bool
	Data []byte
	AtomPos
}

func (f *FreeSpace) Tag() Tag {
	if f.Skip {
		return SKIP
	}
	return FREE
}

func (f *FreeSpace) Marshal(b []byte) (n int) {
	n = putHeader(b, f.Tag(), f.Len(), false)
	n += copy(b[n:], f.Data)
	return
}

func (f *FreeSpace) Len() int {
	return HeaderSize + len(f.Data)
}

func (f *FreeSpace) Unmarshal(b []byte, offset int) (n int, err error) {
	n = len(b)
	f.AtomPos.setPos(offset, n)
	f.Data = b[headerLen(b):]
	return n, nil
}

func (*FreeSpace) Children() []Atom {
	return nil
}

func (f *FreeSpace) String() string {
	return fmt.Sprintf("payload=%d", len(f.Data))
}
