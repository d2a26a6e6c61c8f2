package mp4io

import (
	"bytes"
	"fmt"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	HDLR = Tag(0x68646c72)

	HandlerVideo = "vide"
	HandlerSound = "soun"
)

// HandlerRefer is the hdlr box. Name keeps its terminator, if any, so it round trips.
type HandlerRefer struct {
	Version     uint8
	Flags       uint32
	PreDefined  uint32
	HandlerType Tag
	Reserved    [3]uint32
	Name        []byte
	AtomPos
}

// NewHandlerRefer returns a hdlr for handler type ("vide", "soun"...) with a NUL terminated name.
func NewHandlerRefer(handler, name string) *HandlerRefer {
	return &HandlerRefer{
		HandlerType: StringToTag(handler),
		Name:        append([]byte(name), 0),
	}
}

func (h *HandlerRefer) Tag() Tag {
	return HDLR
}

func (h *HandlerRefer) Len() int {
	return FullHeaderSize + 20 + len(h.Name)
}

func (h *HandlerRefer) Marshal(b []byte) (n int) {
	n = putFullHeader(b, HDLR, h.Len(), h.Version, h.Flags)
	pio.PutU32BE(b[n:], h.PreDefined)
	n += 4
	pio.PutU32BE(b[n:], uint32(h.HandlerType))
	n += 4
	for _, v := range h.Reserved {
		pio.PutU32BE(b[n:], v)
		n += 4
	}
	n += copy(b[n:], h.Name)
	return
}

func (h *HandlerRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	h.AtomPos.setPos(offset, len(b))
	var r *pio.Reader
	if r, h.Version, h.Flags, err = readFullHeader(b, offset); err != nil {
		return
	}
	if h.PreDefined, err = r.ReadU32(); err != nil {
		return 0, fieldErr("PreDefined", offset, r, err)
	}
	var v uint32
	if v, err = r.ReadU32(); err != nil {
		return 0, fieldErr("HandlerType", offset, r, err)
	}
	h.HandlerType = Tag(v)
	for i := range h.Reserved {
		if h.Reserved[i], err = r.ReadU32(); err != nil {
			return 0, fieldErr("Reserved", offset, r, err)
		}
	}
	h.Name, _ = r.ReadBytes(r.Remaining())
	return len(b), nil
}

func (*HandlerRefer) Children() []Atom {
	return nil
}

func (h *HandlerRefer) String() string {
	return fmt.Sprintf("handler=%s name=%q", h.HandlerType, bytes.TrimRight(h.Name, "\x00"))
}
