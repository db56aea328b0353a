// Package reader assembles instruction values from a byte stream.
//
// Instructions are sequences of little-endian 16-bit halfwords. The first
// halfword gives the length class; the remaining halfwords are appended in
// the order of the instruction's shape.
package reader

import (
	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/memory"
)

// Raw is an instruction value read from a byte source.
type Raw struct {
	Value  insts.WideWord
	Length insts.LengthClass
	Shape  insts.Shape
	// Size is the number of bytes consumed. On failure it is the number of
	// bytes a caller should skip.
	Size int
}

// failSize is the number of bytes reported consumed by a failed read.
const failSize = 2

// Read reads and classifies the instruction at address. It never requests
// bytes beyond the size of the detected length class.
//
// On failure the returned Raw carries the detected shape (if any) as a
// length estimate and a Size of 2; the error is an *insts.DecodeError of
// kind KindReadFailure or KindInvalidLength.
func Read(src memory.ByteSource, address uint64) (Raw, error) {
	head, err := src.ReadBytes(address, 2)
	if err != nil {
		return Raw{Size: failSize}, fail(insts.KindReadFailure, address, insts.LengthInvalid, err)
	}
	word := le16(head)

	shape := insts.ClassifyPrefix(word)
	raw := Raw{Shape: shape, Length: shape.Length(), Size: failSize}

	if shape == insts.ShapeInvalid {
		return raw, fail(insts.KindInvalidLength, address, insts.LengthInvalid, nil)
	}
	if shape == insts.ShapeScalar16 {
		raw.Value = insts.Word(uint64(word))
		raw.Size = 2
		return raw, nil
	}

	size := raw.Length.Bytes()
	tail, err := src.ReadBytes(address+2, size-2)
	if err != nil {
		return raw, fail(insts.KindReadFailure, address, raw.Length, err)
	}

	raw.Value = assemble(shape, word, tail)
	raw.Size = size
	return raw, nil
}

// assemble builds the value of a multi-halfword instruction from its first
// word and the remaining bytes.
//
//	scalar32  word<<16 | h1
//	scalar48  word<<32 | h2<<16 | h1   (a little-endian 32-bit immediate)
//	vector48  word<<32 | h1<<16 | h2
//	vector80  hi = word, lo = h1<<48 | h2<<32 | h3<<16 | h4
func assemble(shape insts.Shape, word uint16, tail []byte) insts.WideWord {
	w := uint64(word)
	switch shape {
	case insts.ShapeScalar32:
		return insts.Word(w<<16 | uint64(le16(tail)))
	case insts.ShapeScalar48:
		return insts.Word(w<<32 | uint64(le32(tail)))
	case insts.ShapeVector48:
		return insts.Word(w<<32 | uint64(le16(tail))<<16 | uint64(le16(tail[2:])))
	case insts.ShapeVector80:
		var lo uint64
		for i := 0; i < 8; i += 2 {
			lo = lo<<16 | uint64(le16(tail[i:]))
		}
		return insts.WordParts(word, lo)
	default:
		return insts.WideWord{}
	}
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func le32(b []byte) uint32 {
	return uint32(le16(b)) | uint32(le16(b[2:]))<<16
}

func fail(kind insts.ErrorKind, address uint64, length insts.LengthClass, err error) error {
	return &insts.DecodeError{
		Kind:    kind,
		Address: address,
		Length:  length,
		Size:    failSize,
		Err:     err,
	}
}
