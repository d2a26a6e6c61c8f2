// Package mp4io reads and writes ISO base media file format boxes.
//
// Every box implements Atom. Containers keep their children in file order so that
// a parsed tree marshals back to the bytes it was read from; boxes without a
// registered codec are kept as *Dummy.
package mp4io

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

// Sample flags as used by trun, tfhd and trex.
const (
	SampleIsNonSync       uint32 = 0x00010000
	SampleHasDependencies uint32 = 0x01000000
	SampleNoDependencies  uint32 = 0x02000000

	SampleNonKeyframe = SampleHasDependencies | SampleIsNonSync
)

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func GetTime32(b []byte) time.Time {
	return epoch1904.Add(time.Second * time.Duration(pio.U32BE(b)))
}

func PutTime32(b []byte, t time.Time) {
	if t.IsZero() {
		pio.PutU32BE(b, 0)
		return
	}
	pio.PutU32BE(b, uint32(t.Sub(epoch1904)/time.Second))
}

func GetTime64(b []byte) time.Time {
	return epoch1904.Add(time.Second * time.Duration(pio.U64BE(b)))
}

func PutTime64(b []byte, t time.Time) {
	if t.IsZero() {
		pio.PutU64BE(b, 0)
		return
	}
	pio.PutU64BE(b, uint64(t.Sub(epoch1904)/time.Second))
}

func PutFixed16(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	b[0] = uint8(intpart)
	b[1] = uint8(fracpart * 256.0)
}

func GetFixed16(b []byte) float64 {
	return float64(b[0]) + float64(b[1])/256.0
}

func PutFixed32(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	pio.PutU16BE(b[0:2], uint16(intpart))
	pio.PutU16BE(b[2:4], uint16(fracpart*65536.0))
}

func GetFixed32(b []byte) float64 {
	return float64(pio.U16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}

// Tag is a four character box type.
type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7e {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], tag)
	return Tag(pio.U32BE(b[:]))
}

// Atom is a single box.
//
// Len reports the full serialized size including the header and is always derived
// from the current field values. Marshal writes exactly Len bytes and returns that
// count. Unmarshal is given the whole box, header included, and the absolute offset
// of its first byte.
type Atom interface {
	Pos() (int, int)
	Tag() Tag
	Marshal([]byte) int
	Unmarshal([]byte, int) (int, error)
	Len() int
	Children() []Atom
}

// AtomPos records where a box was found when it was parsed.
type AtomPos struct {
	Offset int
	Size   int
}

func (p AtomPos) Pos() (int, int) {
	return p.Offset, p.Size
}

func (p *AtomPos) setPos(offset int, size int) {
	p.Offset, p.Size = offset, size
}

// Dummy keeps the payload of a box this package has no codec for.
type Dummy struct {
	Tag_      Tag
	Data      []byte
	LargeSize bool
	AtomPos
}

func (d *Dummy) Children() []Atom {
	return nil
}

func (d *Dummy) Tag() Tag {
	return d.Tag_
}

func (d *Dummy) Len() int {
	return boxHeaderLen(len(d.Data), d.LargeSize) + len(d.Data)
}

func (d *Dummy) Marshal(b []byte) (n int) {
	n = putHeader(b, d.Tag_, d.Len(), needsLarge(len(d.Data), d.LargeSize))
	n += copy(b[n:], d.Data)
	return
}

func (d *Dummy) Unmarshal(b []byte, offset int) (n int, err error) {
	(&d.AtomPos).setPos(offset, len(b))
	hdr := headerLen(b)
	if len(b) < HeaderSize {
		err = parseErr("header", offset, nil)
		return
	}
	d.Tag_ = Tag(pio.U32BE(b[4:]))
	d.LargeSize = hdr == LargeHeaderSize
	d.Data = b[hdr:]
	n = len(b)
	return
}

func (d *Dummy) String() string {
	return fmt.Sprintf("unknown payload=%d", len(d.Data))
}

// FindChildren returns the first box with the given tag in depth-first order, root included.
func FindChildren(root Atom, tag Tag) Atom {
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}

func FindChildrenByName(root Atom, tag string) Atom {
	return FindChildren(root, StringToTag(tag))
}

// FindAll returns every box with the given tag below and including root.
func FindAll(root Atom, tag Tag) (r []Atom) {
	if root.Tag() == tag {
		r = append(r, root)
	}
	for _, child := range root.Children() {
		r = append(r, FindAll(child, tag)...)
	}
	return
}

func printatom(out io.Writer, root Atom, depth int) {
	offset, size := root.Pos()

	fmt.Fprintf(out, "%s%s offset=%d size=%d len=%d",
		strings.Repeat(" ", depth*2), root.Tag(), offset, size, root.Len(),
	)
	if str, ok := root.(fmt.Stringer); ok {
		fmt.Fprint(out, " ", str.String())
	}
	fmt.Fprintln(out)

	for _, child := range root.Children() {
		printatom(out, child, depth+1)
	}
}

// FprintAtom writes an indented tree of root and its descendants.
func FprintAtom(out io.Writer, root Atom) {
	printatom(out, root, 0)
}

func PrintAtom(root Atom) {
	FprintAtom(os.Stdout, root)
}
