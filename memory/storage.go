package memory

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Storage is a byte source backed by an akita storage, mapped at a base
// address. It suits sparse images assembled piecewise with Write.
type Storage struct {
	base    uint64
	storage *mem.Storage
	size    uint64
}

// NewStorage creates a zero-filled storage of capacity bytes at base.
func NewStorage(base, capacity uint64) *Storage {
	return &Storage{
		base:    base,
		storage: mem.NewStorage(capacity),
		size:    capacity,
	}
}

// Capacity returns the storage size in bytes.
func (s *Storage) Capacity() uint64 { return s.size }

// Write copies data into the storage at address.
func (s *Storage) Write(address uint64, data []byte) error {
	off, ok := span(s.base, s.size, address, len(data))
	if !ok {
		return outOfRange(address, len(data), "outside storage")
	}
	if err := s.storage.Write(off, data); err != nil {
		return fmt.Errorf("storage write at 0x%x: %w", address, err)
	}
	return nil
}

// ReadBytes implements ByteSource. Bounds are checked before the storage is
// touched.
func (s *Storage) ReadBytes(address uint64, count int) ([]byte, error) {
	off, ok := span(s.base, s.size, address, count)
	if !ok {
		return nil, outOfRange(address, count,
			fmt.Sprintf("outside storage [0x%x, 0x%x)", s.base, s.base+s.size))
	}
	data, err := s.storage.Read(off, uint64(count))
	if err != nil {
		return nil, fmt.Errorf("storage read at 0x%x: %w", address, err)
	}
	return data, nil
}
