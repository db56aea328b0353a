package reader_test

import (
	"errors"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/memory"
	"github.com/sarchlab/vc4dis/reader"
)

// recordingSource remembers the furthest byte requested.
type recordingSource struct {
	memory.ByteSource
	maxEnd uint64
}

func (r *recordingSource) ReadBytes(address uint64, count int) ([]byte, error) {
	if end := address + uint64(count); end > r.maxEnd {
		r.maxEnd = end
	}
	return r.ByteSource.ReadBytes(address, count)
}

func at(base uint64, data ...byte) *memory.Bytes {
	return memory.NewBytes(base, data)
}

var _ = Describe("Read", func() {
	It("should read a zero halfword as a 16-bit instruction", func() {
		raw, err := reader.Read(at(0, 0x00, 0x00), 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(raw.Length).To(Equal(insts.Length16))
		Expect(raw.Shape).To(Equal(insts.ShapeScalar16))
		Expect(raw.Value.IsZero()).To(BeTrue())
		Expect(raw.Size).To(Equal(2))
	})

	It("should read every 16-bit prefix as its own value", func() {
		buf := make([]byte, 2)
		src := memory.NewBytes(0x40, buf)
		for word := 0; word <= 0x7FFF; word++ {
			buf[0], buf[1] = byte(word), byte(word>>8)
			raw, err := reader.Read(src, 0x40)
			Expect(err).ToNot(HaveOccurred())
			Expect(raw.Length).To(Equal(insts.Length16))
			Expect(raw.Size).To(Equal(2))
			Expect(insts.EqualInt(raw.Value, word)).To(BeTrue(), "word 0x%04x", word)
		}
	})

	It("should assemble a 32-bit value with the first halfword on top", func() {
		raw, err := reader.Read(at(0x100, 0x41, 0xC0, 0x03, 0x17), 0x100)
		Expect(err).ToNot(HaveOccurred())
		Expect(raw.Length).To(Equal(insts.Length32))
		Expect(raw.Value).To(Equal(insts.Word(0xC0411703)))
		Expect(raw.Size).To(Equal(4))
	})

	It("should assemble a 48-bit scalar value with a 32-bit immediate", func() {
		raw, err := reader.Read(at(0, 0x00, 0xE0, 0x12, 0x34, 0x56, 0x78), 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(raw.Length).To(Equal(insts.Length48))
		Expect(raw.Shape).To(Equal(insts.ShapeScalar48))
		Expect(raw.Size).To(Equal(6))
		Expect(raw.Value.Bits(0, 32)).To(Equal(uint64(0x78563412)))
		Expect(raw.Value.Bits(32, 16)).To(Equal(uint64(0xE000)))
	})

	It("should keep the halfword order of 48-bit vector values", func() {
		raw, err := reader.Read(at(0, 0x00, 0xF0, 0x42, 0x01, 0xFC, 0xFF), 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(raw.Shape).To(Equal(insts.ShapeVector48))
		Expect(raw.Value).To(Equal(insts.Word(0xF0000142FFFC)))
	})

	It("should place the first 80-bit halfword in the high part", func() {
		raw, err := reader.Read(at(0,
			0x03, 0xF9,
			0x40, 0x01, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
		), 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(raw.Length).To(Equal(insts.Length80))
		Expect(raw.Size).To(Equal(10))
		Expect(raw.Value).To(Equal(insts.WordParts(0xF903, 0x0140000000000010)))
	})

	DescribeTable("should consume exactly the class size",
		func(data []byte, size int) {
			src := &recordingSource{ByteSource: at(0x200, data...)}
			raw, err := reader.Read(src, 0x200)
			Expect(err).ToNot(HaveOccurred())
			Expect(raw.Size).To(Equal(size))
			Expect(src.maxEnd).To(Equal(uint64(0x200 + size)))
		},
		Entry("32-bit", []byte{0x00, 0x80, 0, 0, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE}, 4),
		Entry("48-bit", []byte{0x00, 0xE0, 0, 0, 0, 0, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE}, 6),
		Entry("80-bit", []byte{0x00, 0xF8, 0, 0, 0, 0, 0, 0, 0, 0, 0xEE, 0xEE}, 10),
	)

	It("should succeed on sources failing just past the instruction", func() {
		properties := gopter.NewProperties(nil)
		properties.Property("reads stay within the class size", prop.ForAll(
			func(prefix uint16, rest []byte) bool {
				word := prefix | 0x8000
				if insts.ClassifyPrefix(word) == insts.ShapeInvalid {
					return true
				}
				size := insts.ClassifyPrefix(word).Length().Bytes()
				buf := append([]byte{byte(word), byte(word >> 8)}, rest...)
				src := memory.NewLimit(memory.NewBytes(0, buf), uint64(size))
				raw, err := reader.Read(src, 0)
				return err == nil && raw.Size == size
			},
			gen.UInt16(),
			gen.SliceOfN(8, gen.UInt8()),
		))
		Expect(properties.Run(gopter.NewFormatedReporter(false, 80, GinkgoWriter))).To(BeTrue())
	})

	It("should fail a truncated 32-bit instruction after two bytes", func() {
		raw, err := reader.Read(at(0, 0x00, 0x80, 0x12), 0)
		Expect(err).To(MatchError(insts.ErrReadFailure))
		Expect(raw.Size).To(Equal(2))
		Expect(raw.Length).To(Equal(insts.Length32))

		var de *insts.DecodeError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Size).To(Equal(2))
		Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())
	})

	It("should fail when the first halfword cannot be read", func() {
		raw, err := reader.Read(at(0, 0x00), 0)
		Expect(err).To(MatchError(insts.ErrReadFailure))
		Expect(raw.Size).To(Equal(2))
		Expect(raw.Length).To(Equal(insts.LengthInvalid))
	})

	It("should reject the 101x prefix", func() {
		raw, err := reader.Read(at(0, 0x00, 0xA0, 0, 0), 0)
		Expect(err).To(MatchError(insts.ErrInvalidLength))
		Expect(insts.KindOf(err)).To(Equal(insts.KindInvalidLength))
		Expect(raw.Size).To(Equal(2))
		Expect(raw.Shape).To(Equal(insts.ShapeInvalid))
	})

	It("should return equal values for repeated reads", func() {
		src := at(0, 0x00, 0xE0, 0x12, 0x34, 0x56, 0x78)
		a, _ := reader.Read(src, 0)
		b, _ := reader.Read(src, 0)
		Expect(a).To(Equal(b))
	})
})
