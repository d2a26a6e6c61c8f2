package buffer

// PooledBuffer is a byte slice with an owner that must be told when the slice is no longer used.
type PooledBuffer interface {
	Data() []byte

	Len() int
	Cap() int

	// Release hands the memory back to its owner. The buffer must not be used afterwards.
	Release()

	Resize(int)
}
