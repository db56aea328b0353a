package insts

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// WordBits is the width of a WideWord in bits.
const WordBits = 80

// WideWord is an unsigned 80-bit instruction value. The low 64 bits live in
// Lo and the top 16 bits in Hi. Hi is zero for every instruction shorter
// than 80 bits.
//
// All operations behave like an unsigned 80-bit register: results wrap
// modulo 2^80 and WideWord is a plain value type.
type WideWord struct {
	Lo uint64
	Hi uint16
}

// Word returns a WideWord holding v.
func Word(v uint64) WideWord {
	return WideWord{Lo: v}
}

// WordSigned returns a WideWord holding v in 80-bit two's complement.
// Negative values fill the high part with ones.
func WordSigned(v int64) WideWord {
	w := WideWord{Lo: uint64(v)}
	if v < 0 {
		w.Hi = 0xFFFF
	}
	return w
}

// WordParts builds a WideWord from its high and low parts.
func WordParts(hi uint16, lo uint64) WideWord {
	return WideWord{Lo: lo, Hi: hi}
}

// WordOf converts any integer to a WideWord. Signed values are
// sign-extended into the high part.
func WordOf[T constraints.Integer](v T) WideWord {
	// Sign test on the generic value, then widen.
	if v < 0 {
		return WordSigned(int64(v))
	}
	return Word(uint64(v))
}

// Mask returns a WideWord with the low n bits set.
func Mask(n uint) WideWord {
	if n >= WordBits {
		return WideWord{Lo: ^uint64(0), Hi: 0xFFFF}
	}
	return Word(1).Shl(n).SubInt(1)
}

// IsZero reports whether the value is zero.
func (w WideWord) IsZero() bool {
	return w.Lo == 0 && w.Hi == 0
}

// Equal reports whether w and o hold the same value.
func (w WideWord) Equal(o WideWord) bool {
	return w.Lo == o.Lo && w.Hi == o.Hi
}

// EqualInt compares w against an integer of any type. A negative v compares
// equal to its 80-bit two's complement pattern.
func EqualInt[T constraints.Integer](w WideWord, v T) bool {
	return w.Equal(WordOf(v))
}

// Not returns the bitwise complement.
func (w WideWord) Not() WideWord {
	return WideWord{Lo: ^w.Lo, Hi: ^w.Hi}
}

// Neg returns the two's complement negation.
func (w WideWord) Neg() WideWord {
	return w.Not().Add(Word(1))
}

// Add returns w + o with the carry out of Lo propagated into Hi.
func (w WideWord) Add(o WideWord) WideWord {
	lo, carry := bits.Add64(w.Lo, o.Lo, 0)
	return WideWord{Lo: lo, Hi: w.Hi + o.Hi + uint16(carry)}
}

// Sub returns w - o.
func (w WideWord) Sub(o WideWord) WideWord {
	return w.Add(o.Neg())
}

// Or returns the bitwise or.
func (w WideWord) Or(o WideWord) WideWord {
	return WideWord{Lo: w.Lo | o.Lo, Hi: w.Hi | o.Hi}
}

// And returns the bitwise and.
func (w WideWord) And(o WideWord) WideWord {
	return WideWord{Lo: w.Lo & o.Lo, Hi: w.Hi & o.Hi}
}

// Xor returns the bitwise exclusive or.
func (w WideWord) Xor(o WideWord) WideWord {
	return WideWord{Lo: w.Lo ^ o.Lo, Hi: w.Hi ^ o.Hi}
}

// AddInt adds a signed integer, sign-extended to 80 bits.
func (w WideWord) AddInt(v int64) WideWord { return w.Add(WordSigned(v)) }

// SubInt subtracts a signed integer, sign-extended to 80 bits.
func (w WideWord) SubInt(v int64) WideWord { return w.Sub(WordSigned(v)) }

// OrInt, AndInt and XorInt apply the operation to an unsigned integer.
func (w WideWord) OrInt(v uint64) WideWord  { return w.Or(Word(v)) }
func (w WideWord) AndInt(v uint64) WideWord { return w.And(Word(v)) }
func (w WideWord) XorInt(v uint64) WideWord { return w.Xor(Word(v)) }

// Shl shifts left by n bits. Shifts of 80 or more yield zero.
func (w WideWord) Shl(n uint) WideWord {
	if n >= WordBits {
		return WideWord{}
	}
	if n >= 64 {
		// Whole low part moves across the boundary.
		w = WideWord{Hi: uint16(w.Lo)}
		n -= 64
	}
	if n == 0 {
		return w
	}
	hi := w.Hi<<n | uint16(w.Lo>>(64-n))
	return WideWord{Lo: w.Lo << n, Hi: hi}
}

// Shr shifts right by n bits. Shifts of 80 or more yield zero.
func (w WideWord) Shr(n uint) WideWord {
	if n >= WordBits {
		return WideWord{}
	}
	if n >= 64 {
		w = WideWord{Lo: uint64(w.Hi)}
		n -= 64
	}
	if n == 0 {
		return w
	}
	// Bits of Hi that slide into Lo. For n >= 16 the whole Hi lands in Lo.
	lo := w.Lo>>n | uint64(w.Hi)<<(64-n)
	var hi uint16
	if n < 16 {
		hi = w.Hi >> n
	}
	return WideWord{Lo: lo, Hi: hi}
}

// Bit reports whether bit n is set.
func (w WideWord) Bit(n uint) bool {
	return !w.Shr(n).AndInt(1).IsZero()
}

// Bits extracts width bits starting at bit lo. Width may be at most 64.
func (w WideWord) Bits(lo, width uint) uint64 {
	if width > 64 {
		panic(fmt.Sprintf("insts: field width %d exceeds 64 bits", width))
	}
	return w.Shr(lo).And(Mask(width)).Uint64()
}

// OnesCount returns the number of set bits.
func (w WideWord) OnesCount() int {
	return bits.OnesCount64(w.Lo) + bits.OnesCount16(w.Hi)
}

// Uint64 narrows the value to 64 bits. The value must fit; a non-zero high
// part is a programming error and panics.
func (w WideWord) Uint64() uint64 {
	if w.Hi != 0 {
		panic(fmt.Sprintf("insts: narrowing %s loses high bits", w))
	}
	return w.Lo
}

// TryUint64 narrows the value to 64 bits, reporting whether it fit.
func (w WideWord) TryUint64() (uint64, bool) {
	return w.Lo, w.Hi == 0
}

// Shape re-derives the instruction shape from an assembled value. It
// returns ShapeInvalid when the value does not look like any instruction.
func (w WideWord) Shape() Shape {
	switch {
	case w.Hi != 0:
		if ClassifyPrefix(w.Hi) == ShapeVector80 {
			return ShapeVector80
		}
		return ShapeInvalid
	case w.Lo>>48 != 0:
		return ShapeInvalid
	case w.Lo>>32 != 0:
		s := ClassifyPrefix(uint16(w.Lo >> 32))
		if s == ShapeScalar48 || s == ShapeVector48 {
			return s
		}
	case w.Lo>>16 != 0:
		if ClassifyPrefix(uint16(w.Lo>>16)) == ShapeScalar32 {
			return ShapeScalar32
		}
	default:
		if ClassifyPrefix(uint16(w.Lo)) == ShapeScalar16 {
			return ShapeScalar16
		}
	}
	return ShapeInvalid
}

// String formats the value as 80-bit hexadecimal.
func (w WideWord) String() string {
	return fmt.Sprintf("0x%04x%016x", w.Hi, w.Lo)
}
