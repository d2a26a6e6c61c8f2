package buffer

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var ErrRegionReleased = errors.New("buffer: mmap region released")

// MmapRegion is a read-only shared mapping of a file range with reference counting.
// The creator holds the first reference; every View holds one more.
type MmapRegion struct {
	mapping []byte // page aligned, as returned by mmap
	data    []byte // the requested range inside mapping
	refs    atomic.Int32
}

// NewMmapRegion maps length bytes of f starting at offset. offset does not need to be
// page aligned.
func NewMmapRegion(f *os.File, offset int64, length int) (*MmapRegion, error) {
	if offset < 0 || length <= 0 {
		return nil, fmt.Errorf("buffer: invalid mmap range %d+%d", offset, length)
	}
	pageSize := int64(unix.Getpagesize())
	aligned := offset &^ (pageSize - 1)
	delta := int(offset - aligned)

	mapping, err := unix.Mmap(int(f.Fd()), aligned, length+delta, unix.PROT_READ, unix.MAP_SHARED) //nolint:gosec // fd fits int
	if err != nil {
		return nil, fmt.Errorf("buffer: mmap %s at %d: %w", f.Name(), offset, err)
	}

	r := &MmapRegion{
		mapping: mapping,
		data:    mapping[delta : delta+length],
	}
	r.refs.Store(1)
	return r, nil
}

// Data returns the mapped range. It is valid until the last reference is released.
func (r *MmapRegion) Data() []byte {
	return r.data
}

// View returns a PooledBuffer over a subrange of the region that keeps the mapping alive
// until it is released.
func (r *MmapRegion) View(offset, length int) (PooledBuffer, error) {
	for {
		refs := r.refs.Load()
		if refs <= 0 {
			return nil, ErrRegionReleased
		}
		if r.refs.CompareAndSwap(refs, refs+1) {
			break
		}
	}
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		r.Release()
		return nil, fmt.Errorf("buffer: view %d+%d outside region of %d bytes", offset, length, len(r.data))
	}

	return &mmapViewBuffer{
		region: r,
		buf:    r.data[offset : offset+length],
	}, nil
}

// Release drops one reference and unmaps the region when none are left.
func (r *MmapRegion) Release() {
	if r.refs.Add(-1) == 0 {
		_ = unix.Munmap(r.mapping)
		r.mapping = nil
		r.data = nil
	}
}

type mmapViewBuffer struct {
	region *MmapRegion
	buf    []byte
}

func (b *mmapViewBuffer) Data() []byte {
	return b.buf
}

func (b *mmapViewBuffer) Len() int {
	return len(b.buf)
}

func (b *mmapViewBuffer) Cap() int {
	return cap(b.buf)
}

func (b *mmapViewBuffer) Resize(_ int) {
	panic("mmapViewBuffer: Resize is not supported for memory-mapped buffers")
}

func (b *mmapViewBuffer) Release() {
	if b.region != nil {
		b.region.Release()
		b.region = nil
		b.buf = nil
	}
}
