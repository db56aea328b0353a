package memory

// Limit wraps a source and fails every read reaching past End. It models
// truncated instruction streams.
type Limit struct {
	src ByteSource
	end uint64
}

// NewLimit returns src truncated at end.
func NewLimit(src ByteSource, end uint64) *Limit {
	return &Limit{src: src, end: end}
}

// ReadBytes implements ByteSource.
func (l *Limit) ReadBytes(address uint64, count int) ([]byte, error) {
	if count < 0 || address > l.end || uint64(count) > l.end-address {
		return nil, outOfRange(address, count, "past limit")
	}
	return l.src.ReadBytes(address, count)
}
