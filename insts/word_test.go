package insts_test

import (
	"math/big"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vc4dis/insts"
)

var modulus = new(big.Int).Lsh(big.NewInt(1), insts.WordBits)

func toBig(w insts.WideWord) *big.Int {
	v := new(big.Int).SetUint64(uint64(w.Hi))
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(w.Lo))
}

func fromBig(v *big.Int) insts.WideWord {
	v = new(big.Int).Mod(v, modulus)
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return insts.WordParts(uint16(hi.Uint64()), lo.Uint64())
}

func wordGen() gopter.Gen {
	return gopter.CombineGens(gen.UInt16(), gen.UInt64()).Map(func(v []interface{}) insts.WideWord {
		return insts.WordParts(v[0].(uint16), v[1].(uint64))
	})
}

func runProperties(p *gopter.Properties) {
	Expect(p.Run(gopter.NewFormatedReporter(false, 80, GinkgoWriter))).To(BeTrue())
}

var _ = Describe("WideWord", func() {
	Describe("construction", func() {
		It("should hold a 64-bit value in the low part", func() {
			w := insts.Word(0x1234)
			Expect(w.Lo).To(Equal(uint64(0x1234)))
			Expect(w.Hi).To(Equal(uint16(0)))
		})

		It("should sign-extend negative values", func() {
			w := insts.WordSigned(-1)
			Expect(w.Lo).To(Equal(^uint64(0)))
			Expect(w.Hi).To(Equal(uint16(0xFFFF)))
			Expect(insts.WordOf(int8(-2))).To(Equal(insts.WordSigned(-2)))
			Expect(insts.WordOf(uint8(0xFE))).To(Equal(insts.Word(0xFE)))
		})

		It("should build masks of any width", func() {
			Expect(insts.Mask(0)).To(Equal(insts.Word(0)))
			Expect(insts.Mask(16)).To(Equal(insts.Word(0xFFFF)))
			Expect(insts.Mask(64)).To(Equal(insts.Word(^uint64(0))))
			Expect(insts.Mask(72)).To(Equal(insts.WordParts(0xFF, ^uint64(0))))
			Expect(insts.Mask(80)).To(Equal(insts.WordParts(0xFFFF, ^uint64(0))))
		})
	})

	Describe("arithmetic", func() {
		It("should carry from the low part into the high part", func() {
			w := insts.Word(^uint64(0)).AddInt(1)
			Expect(w).To(Equal(insts.WordParts(1, 0)))
		})

		It("should wrap modulo 2^80", func() {
			max := insts.Mask(80)
			Expect(max.AddInt(1).IsZero()).To(BeTrue())
			Expect(insts.Word(0).SubInt(1)).To(Equal(max))
		})

		It("should negate in two's complement", func() {
			Expect(insts.Word(1).Neg()).To(Equal(insts.WordSigned(-1)))
			Expect(insts.Word(0).Neg().IsZero()).To(BeTrue())
		})

		It("should compare against plain integers", func() {
			Expect(insts.EqualInt(insts.Word(42), 42)).To(BeTrue())
			Expect(insts.EqualInt(insts.WordSigned(-5), int16(-5))).To(BeTrue())
			Expect(insts.EqualInt(insts.WordParts(1, 42), uint64(42))).To(BeFalse())
		})

		It("should match big integer arithmetic", func() {
			p := gopter.NewProperties(nil)
			p.Property("add", prop.ForAll(func(a, b insts.WideWord) bool {
				want := fromBig(new(big.Int).Add(toBig(a), toBig(b)))
				return a.Add(b).Equal(want)
			}, wordGen(), wordGen()))
			p.Property("sub", prop.ForAll(func(a, b insts.WideWord) bool {
				want := fromBig(new(big.Int).Sub(toBig(a), toBig(b)))
				return a.Sub(b).Equal(want)
			}, wordGen(), wordGen()))
			p.Property("neg", prop.ForAll(func(a insts.WideWord) bool {
				want := fromBig(new(big.Int).Neg(toBig(a)))
				return a.Neg().Equal(want)
			}, wordGen()))
			runProperties(p)
		})
	})

	Describe("bitwise operations", func() {
		It("should match big integer bitwise operations", func() {
			p := gopter.NewProperties(nil)
			p.Property("or", prop.ForAll(func(a, b insts.WideWord) bool {
				return a.Or(b).Equal(fromBig(new(big.Int).Or(toBig(a), toBig(b))))
			}, wordGen(), wordGen()))
			p.Property("and", prop.ForAll(func(a, b insts.WideWord) bool {
				return a.And(b).Equal(fromBig(new(big.Int).And(toBig(a), toBig(b))))
			}, wordGen(), wordGen()))
			p.Property("xor", prop.ForAll(func(a, b insts.WideWord) bool {
				return a.Xor(b).Equal(fromBig(new(big.Int).Xor(toBig(a), toBig(b))))
			}, wordGen(), wordGen()))
			p.Property("not is xor with all ones", prop.ForAll(func(a insts.WideWord) bool {
				return a.Not().Equal(a.Xor(insts.Mask(80)))
			}, wordGen()))
			runProperties(p)
		})

		It("should use inclusive or, not exclusive or", func() {
			a := insts.Word(0b1100)
			Expect(a.OrInt(0b1010)).To(Equal(insts.Word(0b1110)))
			Expect(a.XorInt(0b1010)).To(Equal(insts.Word(0b0110)))
			Expect(a.AndInt(0b1010)).To(Equal(insts.Word(0b1000)))
		})
	})

	Describe("shifts", func() {
		It("should match big integer shifts", func() {
			p := gopter.NewProperties(nil)
			p.Property("shl", prop.ForAll(func(a insts.WideWord, n uint) bool {
				return a.Shl(n).Equal(fromBig(new(big.Int).Lsh(toBig(a), n)))
			}, wordGen(), gen.UIntRange(0, 100)))
			p.Property("shr", prop.ForAll(func(a insts.WideWord, n uint) bool {
				return a.Shr(n).Equal(fromBig(new(big.Int).Rsh(toBig(a), n)))
			}, wordGen(), gen.UIntRange(0, 100)))
			runProperties(p)
		})

		It("should move the low part across the 64-bit boundary", func() {
			w := insts.Word(0xABCD).Shl(64)
			Expect(w).To(Equal(insts.WordParts(0xABCD, 0)))
			Expect(w.Shr(64)).To(Equal(insts.Word(0xABCD)))
			Expect(insts.Word(0xABCD).Shl(68)).To(Equal(insts.WordParts(0xBCD0, 0)))
		})

		It("should drop bits shifted past bit 79", func() {
			w := insts.WordParts(0x8000, 0).Shl(1)
			Expect(w.IsZero()).To(BeTrue())
			Expect(insts.Mask(80).Shl(80).IsZero()).To(BeTrue())
			Expect(insts.Mask(80).Shr(80).IsZero()).To(BeTrue())
		})
	})

	Describe("field extraction", func() {
		It("should extract fields straddling the 64-bit boundary", func() {
			w := insts.WordParts(0x0005, 0xC000000000000000)
			Expect(w.Bits(62, 5)).To(Equal(uint64(0b10111)))
			Expect(w.Bit(64)).To(BeTrue())
			Expect(w.Bit(65)).To(BeFalse())
		})

		It("should count set bits in both parts", func() {
			Expect(insts.WordParts(0xF, 0xFF).OnesCount()).To(Equal(12))
		})

		It("should panic on fields wider than 64 bits", func() {
			Expect(func() { insts.Mask(80).Bits(0, 65) }).To(Panic())
		})
	})

	Describe("narrowing", func() {
		It("should narrow values that fit", func() {
			Expect(insts.Word(7).Uint64()).To(Equal(uint64(7)))
			v, ok := insts.Word(7).TryUint64()
			Expect(v).To(Equal(uint64(7)))
			Expect(ok).To(BeTrue())
		})

		It("should panic when the high part is set", func() {
			Expect(func() { insts.WordParts(1, 0).Uint64() }).To(Panic())
			_, ok := insts.WordParts(1, 0).TryUint64()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Shape", func() {
		DescribeTable("should re-derive the shape from the value",
			func(w insts.WideWord, want insts.Shape) {
				Expect(w.Shape()).To(Equal(want))
			},
			Entry("16-bit", insts.Word(0x0001), insts.ShapeScalar16),
			Entry("32-bit", insts.Word(0x80001234), insts.ShapeScalar32),
			Entry("48-bit scalar", insts.Word(0xE00012345678), insts.ShapeScalar48),
			Entry("48-bit vector", insts.Word(0xF00012345678), insts.ShapeVector48),
			Entry("80-bit", insts.WordParts(0xF800, 1), insts.ShapeVector80),
			Entry("invalid prefix", insts.Word(0xA0001234), insts.ShapeInvalid),
		)
	})

	It("should print all 80 bits", func() {
		Expect(insts.WordParts(0xF800, 0x1F).String()).To(Equal("0xf800000000000000001f"))
	})
})

var _ = Describe("LengthClass", func() {
	DescribeTable("should classify the first word",
		func(word uint16, shape insts.Shape, bytes int) {
			s := insts.ClassifyPrefix(word)
			Expect(s).To(Equal(shape))
			Expect(s.Length().Bytes()).To(Equal(bytes))
		},
		Entry("0xxx", uint16(0x7FFF), insts.ShapeScalar16, 2),
		Entry("1000", uint16(0x8000), insts.ShapeScalar32, 4),
		Entry("1001", uint16(0x9FFF), insts.ShapeScalar32, 4),
		Entry("1100", uint16(0xC000), insts.ShapeScalar32, 4),
		Entry("1101", uint16(0xD123), insts.ShapeScalar32, 4),
		Entry("1110", uint16(0xE000), insts.ShapeScalar48, 6),
		Entry("11110", uint16(0xF7FF), insts.ShapeVector48, 6),
		Entry("11111", uint16(0xF800), insts.ShapeVector80, 10),
		Entry("1010", uint16(0xA000), insts.ShapeInvalid, 0),
		Entry("1011", uint16(0xB000), insts.ShapeInvalid, 0),
	)

	It("should report sizes in bits and bytes", func() {
		Expect(insts.Length80.Bits()).To(Equal(80))
		Expect(insts.Length48.String()).To(Equal("48"))
		Expect(insts.ShapeVector48.IsVector()).To(BeTrue())
		Expect(insts.ShapeScalar48.IsVector()).To(BeFalse())
	})
})
