package insts

// LengthClass is the total encoded size of an instruction.
type LengthClass uint8

// Instruction length classes.
const (
	LengthInvalid LengthClass = iota
	Length16
	Length32
	Length48
	Length80
)

// Bytes returns the encoded size in bytes, or 0 for LengthInvalid.
func (l LengthClass) Bytes() int {
	switch l {
	case Length16:
		return 2
	case Length32:
		return 4
	case Length48:
		return 6
	case Length80:
		return 10
	default:
		return 0
	}
}

// Bits returns the encoded size in bits.
func (l LengthClass) Bits() int {
	return l.Bytes() * 8
}

func (l LengthClass) String() string {
	switch l {
	case Length16:
		return "16"
	case Length32:
		return "32"
	case Length48:
		return "48"
	case Length80:
		return "80"
	default:
		return "invalid"
	}
}

// Shape refines a length class with the scalar/vector distinction. Scalar
// and vector 48-bit instructions share a length class but are assembled
// from their bytes differently.
type Shape uint8

// Instruction shapes.
const (
	ShapeInvalid Shape = iota
	ShapeScalar16
	ShapeScalar32
	ShapeScalar48
	ShapeVector48
	ShapeVector80
)

// Length returns the length class of the shape.
func (s Shape) Length() LengthClass {
	switch s {
	case ShapeScalar16:
		return Length16
	case ShapeScalar32:
		return Length32
	case ShapeScalar48, ShapeVector48:
		return Length48
	case ShapeVector80:
		return Length80
	default:
		return LengthInvalid
	}
}

// IsVector reports whether the shape belongs to the vector instruction
// groups.
func (s Shape) IsVector() bool {
	return s == ShapeVector48 || s == ShapeVector80
}

func (s Shape) String() string {
	switch s {
	case ShapeScalar16:
		return "scalar16"
	case ShapeScalar32:
		return "scalar32"
	case ShapeScalar48:
		return "scalar48"
	case ShapeVector48:
		return "vector48"
	case ShapeVector80:
		return "vector80"
	default:
		return "invalid"
	}
}

// ClassifyPrefix derives the instruction shape from the first 16-bit
// little-endian word of an instruction.
//
//	0xxx xxxx xxxx xxxx  scalar 16
//	1x0x xxxx xxxx xxxx  scalar 32
//	1110 xxxx xxxx xxxx  scalar 48
//	1111 0xxx xxxx xxxx  vector 48
//	1111 1xxx xxxx xxxx  vector 80
//
// Words starting 101x match no group.
func ClassifyPrefix(word uint16) Shape {
	switch {
	case word&0x8000 == 0x0000:
		return ShapeScalar16
	case word&0xA000 == 0x8000:
		return ShapeScalar32
	case word&0xF000 == 0xE000:
		return ShapeScalar48
	case word&0xF800 == 0xF000:
		return ShapeVector48
	case word&0xF800 == 0xF800:
		return ShapeVector80
	default:
		return ShapeInvalid
	}
}
