package mp4io

import "fmt"

// Container holds the children of a container box in file order.
type Container struct {
	Boxes []Atom
	// Padding is a run of fewer than 8 zero bytes found after the last child.
	Padding   []byte
	LargeSize bool
}

func (c *Container) Children() []Atom {
	return c.Boxes
}

// Add appends boxes after the existing children.
func (c *Container) Add(atoms ...Atom) {
	c.Boxes = append(c.Boxes, atoms...)
}

// Replace swaps the first child carrying the same tag as a, or appends a.
func (c *Container) Replace(a Atom) {
	for i, child := range c.Boxes {
		if child.Tag() == a.Tag() {
			c.Boxes[i] = a
			return
		}
	}
	c.Boxes = append(c.Boxes, a)
}

// Remove drops every child with the given tag and reports how many were removed.
func (c *Container) Remove(tag Tag) (removed int) {
	kept := c.Boxes[:0]
	for _, child := range c.Boxes {
		if child.Tag() == tag {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	clear(c.Boxes[len(kept):])
	c.Boxes = kept
	return
}

func (c *Container) First(tag Tag) Atom {
	for _, child := range c.Boxes {
		if child.Tag() == tag {
			return child
		}
	}
	return nil
}

func (c *Container) All(tag Tag) (r []Atom) {
	for _, child := range c.Boxes {
		if child.Tag() == tag {
			r = append(r, child)
		}
	}
	return
}

func (c *Container) contentLen() (n int) {
	for _, child := range c.Boxes {
		n += child.Len()
	}
	return n + len(c.Padding)
}

func (c *Container) marshalContent(b []byte) (n int) {
	for _, child := range c.Boxes {
		n += child.Marshal(b[n:])
	}
	n += copy(b[n:], c.Padding)
	return
}

func (c *Container) lenBox() int {
	content := c.contentLen()
	return boxHeaderLen(content, c.LargeSize) + content
}

func (c *Container) marshalBox(b []byte, tag Tag) (n int) {
	content := c.contentLen()
	large := needsLarge(content, c.LargeSize)
	n = putHeader(b, tag, boxHeaderLen(content, large)+content, large)
	n += c.marshalContent(b[n:])
	return
}

func (c *Container) unmarshalBox(b []byte, offset int, pos *AtomPos) (n int, err error) {
	pos.setPos(offset, len(b))
	hdr := headerLen(b)
	c.LargeSize = hdr == LargeHeaderSize
	if c.Boxes, c.Padding, err = readAtoms(b[hdr:], offset+hdr); err != nil {
		return
	}
	n = len(b)
	return
}

func (c *Container) String() string {
	return fmt.Sprintf("children=%d", len(c.Boxes))
}

func childOf[T Atom](c *Container) (t T) {
	for _, child := range c.Boxes {
		if v, ok := child.(T); ok {
			return v
		}
	}
	return
}

func childrenOf[T Atom](c *Container) (r []T) {
	for _, child := range c.Boxes {
		if v, ok := child.(T); ok {
			r = append(r, v)
		}
	}
	return
}
