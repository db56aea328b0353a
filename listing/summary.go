package listing

import (
	"github.com/sarchlab/vc4dis/disasm"
)

// Summary counts listing lines by status.
type Summary struct {
	Lines   int    `yaml:"lines" cbor:"lines"`
	Bytes   uint64 `yaml:"bytes" cbor:"bytes"`
	Covered uint64 `yaml:"covered" cbor:"covered"`
	// Counts maps status names to line counts. Statuses without lines are
	// omitted.
	Counts map[string]int `yaml:"counts" cbor:"counts"`
}

// Summarize aggregates listings.
func Summarize(listings []*disasm.Listing) Summary {
	s := Summary{Counts: make(map[string]int)}
	for _, l := range listings {
		s.Lines += len(l.Lines)
		s.Bytes += l.Range.Len()
		s.Covered += l.CoveredBytes()
		for _, line := range l.Lines {
			s.Counts[line.Status.String()]++
		}
	}
	return s
}

// Coverage returns the fraction of swept bytes owned by decoded
// instructions.
func (s Summary) Coverage() float64 {
	if s.Bytes == 0 {
		return 0
	}
	return float64(s.Covered) / float64(s.Bytes)
}

// Failures returns the number of lines that did not decode to an
// instruction.
func (s Summary) Failures() int {
	n := 0
	for _, st := range disasm.Statuses() {
		if !st.Decoded() {
			n += s.Counts[st.String()]
		}
	}
	return n
}
