package mp4io

const STBL = Tag(0x7374626c)

// SampleTable is the stbl box.
type SampleTable struct {
	Container
	AtomPos
}

func (s *SampleTable) Tag() Tag {
	return STBL
}

func (s *SampleTable) Len() int {
	return s.lenBox()
}

func (s *SampleTable) Marshal(b []byte) int {
	return s.marshalBox(b, STBL)
}

func (s *SampleTable) Unmarshal(b []byte, offset int) (int, error) {
	return s.unmarshalBox(b, offset, &s.AtomPos)
}

func (s *SampleTable) SampleDesc() *SampleDesc {
	if s == nil {
		return nil
	}
	return childOf[*SampleDesc](&s.Container)
}

func (s *SampleTable) TimeToSample() *TimeToSample {
	if s == nil {
		return nil
	}
	return childOf[*TimeToSample](&s.Container)
}

func (s *SampleTable) CompositionOffset() *CompositionOffset {
	if s == nil {
		return nil
	}
	return childOf[*CompositionOffset](&s.Container)
}

func (s *SampleTable) SampleToChunk() *SampleToChunk {
	if s == nil {
		return nil
	}
	return childOf[*SampleToChunk](&s.Container)
}

func (s *SampleTable) SampleSize() *SampleSize {
	if s == nil {
		return nil
	}
	return childOf[*SampleSize](&s.Container)
}

func (s *SampleTable) SyncSample() *SyncSample {
	if s == nil {
		return nil
	}
	return childOf[*SyncSample](&s.Container)
}

func (s *SampleTable) SampleDependency() *SampleDependency {
	if s == nil {
		return nil
	}
	return childOf[*SampleDependency](&s.Container)
}

func (s *SampleTable) SubSampleInfo() *SubSampleInfo {
	if s == nil {
		return nil
	}
	return childOf[*SubSampleInfo](&s.Container)
}

// ChunkOffsets returns the entries of stco or co64, whichever is present.
func (s *SampleTable) ChunkOffsets() []uint64 {
	if s == nil {
		return nil
	}
	if co := childOf[*ChunkOffset](&s.Container); co != nil {
		r := make([]uint64, len(co.Entries))
		for i, off := range co.Entries {
			r[i] = uint64(off)
		}
		return r
	}
	if co := childOf[*ChunkLargeOffset](&s.Container); co != nil {
		return co.Entries
	}
	return nil
}

// ChunkOffsetBox returns the stco or co64 child.
func (s *SampleTable) ChunkOffsetBox() Atom {
	if s == nil {
		return nil
	}
	if co := s.First(STCO); co != nil {
		return co
	}
	return s.First(CO64)
}
