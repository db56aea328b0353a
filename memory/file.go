package memory

import (
	"errors"
	"fmt"
	"io"
)

// ReaderAt is a byte source over an io.ReaderAt, such as an open file,
// mapped at a base address. Every read goes to the reader; put a Cache in
// front of it for sweeps.
type ReaderAt struct {
	r    io.ReaderAt
	base uint64
	size uint64
}

// NewReaderAt maps size bytes of r at base.
func NewReaderAt(r io.ReaderAt, base, size uint64) *ReaderAt {
	return &ReaderAt{r: r, base: base, size: size}
}

// ReadBytes implements ByteSource.
func (f *ReaderAt) ReadBytes(address uint64, count int) ([]byte, error) {
	off, ok := span(f.base, f.size, address, count)
	if !ok {
		return nil, outOfRange(address, count,
			fmt.Sprintf("outside [0x%x, 0x%x)", f.base, f.base+f.size))
	}

	buf := make([]byte, count)
	n, err := f.r.ReadAt(buf, int64(off))
	if n == count {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, outOfRange(address, count, fmt.Sprintf("short read of %d bytes", n))
	}
	return nil, fmt.Errorf("read at 0x%x: %w", address, err)
}
