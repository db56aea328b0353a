// Package memory provides the byte sources instructions are read from.
//
// Every source is addressed by absolute instruction address. A read either
// returns exactly the requested number of bytes or fails; partial reads are
// reported as errors matching ErrOutOfRange.
package memory

import (
	"errors"
	"fmt"
)

// ErrOutOfRange reports a read touching bytes the source does not hold.
var ErrOutOfRange = errors.New("address out of range")

// ByteSource supplies instruction bytes at an address.
type ByteSource interface {
	// ReadBytes returns count bytes starting at address. The returned slice
	// may alias the source's storage and must not be modified.
	ReadBytes(address uint64, count int) ([]byte, error)
}

// outOfRange formats a read failure for [address, address+count).
func outOfRange(address uint64, count int, detail string) error {
	return fmt.Errorf("%w: read of %d bytes at 0x%x %s", ErrOutOfRange, count, address, detail)
}

// span checks that [address, address+count) lies inside [base, base+size)
// and returns the offset of address from base.
func span(base, size, address uint64, count int) (uint64, bool) {
	if count < 0 || address < base {
		return 0, false
	}
	off := address - base
	if off > size || uint64(count) > size-off {
		return 0, false
	}
	return off, true
}

// Bytes is a byte slice mapped at a base address.
type Bytes struct {
	base uint64
	data []byte
}

// NewBytes maps data at base. The slice is not copied.
func NewBytes(base uint64, data []byte) *Bytes {
	return &Bytes{base: base, data: data}
}

// Base returns the address of the first byte.
func (b *Bytes) Base() uint64 { return b.base }

// Len returns the number of mapped bytes.
func (b *Bytes) Len() int { return len(b.data) }

// End returns the address one past the last byte.
func (b *Bytes) End() uint64 { return b.base + uint64(len(b.data)) }

// ReadBytes implements ByteSource.
func (b *Bytes) ReadBytes(address uint64, count int) ([]byte, error) {
	off, ok := span(b.base, uint64(len(b.data)), address, count)
	if !ok {
		return nil, outOfRange(address, count,
			fmt.Sprintf("outside [0x%x, 0x%x)", b.base, b.End()))
	}
	return b.data[off : off+uint64(count)], nil
}
