package memory

import (
	"cmp"
	"fmt"
	"slices"
)

// Segment is one mapped region of a Segments source.
type Segment struct {
	Addr uint64
	Data []byte
}

// End returns the address one past the segment.
func (s Segment) End() uint64 { return s.Addr + uint64(len(s.Data)) }

// Segments maps several disjoint regions. A read must fall entirely inside
// one region; reads straddling a gap fail even if both sides are mapped.
type Segments struct {
	segs []Segment
}

// NewSegments builds a source from regions. Empty regions are dropped and
// overlapping regions are rejected.
func NewSegments(segs ...Segment) (*Segments, error) {
	sorted := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if len(s.Data) > 0 {
			sorted = append(sorted, s)
		}
	}
	slices.SortFunc(sorted, func(a, b Segment) int { return cmp.Compare(a.Addr, b.Addr) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Addr < sorted[i-1].End() {
			return nil, fmt.Errorf("segment at 0x%x overlaps segment at 0x%x",
				sorted[i].Addr, sorted[i-1].Addr)
		}
	}
	return &Segments{segs: sorted}, nil
}

// Regions returns the mapped regions in address order.
func (s *Segments) Regions() []Segment {
	return slices.Clone(s.segs)
}

// find returns the segment holding address.
func (s *Segments) find(address uint64) (Segment, bool) {
	i, found := slices.BinarySearchFunc(s.segs, address, func(seg Segment, a uint64) int {
		return cmp.Compare(seg.Addr, a)
	})
	if found {
		return s.segs[i], true
	}
	if i == 0 {
		return Segment{}, false
	}
	seg := s.segs[i-1]
	if address < seg.End() {
		return seg, true
	}
	return Segment{}, false
}

// ReadBytes implements ByteSource.
func (s *Segments) ReadBytes(address uint64, count int) ([]byte, error) {
	seg, ok := s.find(address)
	if !ok {
		return nil, outOfRange(address, count, "not mapped")
	}
	off, ok := span(seg.Addr, uint64(len(seg.Data)), address, count)
	if !ok {
		return nil, outOfRange(address, count,
			fmt.Sprintf("crosses the end of segment 0x%x", seg.Addr))
	}
	return seg.Data[off : off+uint64(count)], nil
}
