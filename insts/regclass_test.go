package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vc4dis/insts"
)

var _ = Describe("Registers", func() {
	It("should use hardware numbering", func() {
		Expect(insts.SP.Number()).To(Equal(uint8(25)))
		Expect(insts.LR.Number()).To(Equal(uint8(26)))
		Expect(insts.SR.Number()).To(Equal(uint8(30)))
		Expect(insts.PC.Number()).To(Equal(uint8(31)))
		Expect(insts.RegFromNumber(31)).To(Equal(insts.PC))
		Expect(insts.RegFromNumber(32)).To(Equal(insts.RegNone))
	})

	It("should name registers", func() {
		Expect(insts.R0.String()).To(Equal("r0"))
		Expect(insts.R24.String()).To(Equal("r24"))
		Expect(insts.SP.String()).To(Equal("sp"))
		Expect(insts.R29.String()).To(Equal("r29"))
		Expect(insts.RegNone.String()).To(Equal("<none>"))
	})
})

var _ = Describe("Resolver", func() {
	var res *insts.Resolver

	BeforeEach(func() {
		res = insts.DefaultResolver()
	})

	DescribeTable("should accept ordinals up to the inclusive bound",
		func(class insts.ClassID, bound uint64, last insts.Reg) {
			c, ok := res.Class(class)
			Expect(ok).To(BeTrue())
			Expect(c.Bound()).To(Equal(bound))

			r, err := res.Resolve(class, bound)
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(last))

			_, err = res.Resolve(class, bound+1)
			Expect(err).To(MatchError(insts.ErrRegisterOutOfRange))
		},
		Entry("LowReg", insts.ClassLow, uint64(16), insts.R16),
		Entry("IntReg", insts.ClassInt, uint64(30), insts.SR),
		Entry("AllReg", insts.ClassAll, uint64(31), insts.PC),
		Entry("ShortReg", insts.ClassShort, uint64(7), insts.R7),
	)

	It("should resolve every valid ordinal to a unique stable register", func() {
		for _, class := range []insts.ClassID{
			insts.ClassLow, insts.ClassInt, insts.ClassAll, insts.ClassShort,
		} {
			c, _ := res.Class(class)
			seen := make(map[insts.Reg]bool)
			for ord := uint64(0); ord <= c.Bound(); ord++ {
				r1, err := res.Resolve(class, ord)
				Expect(err).ToNot(HaveOccurred())
				r2, _ := res.Resolve(class, ord)
				Expect(r2).To(Equal(r1))
				Expect(seen[r1]).To(BeFalse(), "%s ordinal %d", class, ord)
				seen[r1] = true
				Expect(c.Contains(r1)).To(BeTrue())
			}
			Expect(seen).To(HaveLen(c.Len()))
		}
	})

	It("should exclude pc from IntReg", func() {
		c, _ := res.Class(insts.ClassInt)
		Expect(c.Contains(insts.PC)).To(BeFalse())
		Expect(c.Contains(insts.SR)).To(BeTrue())
	})

	It("should reject unknown classes", func() {
		_, err := res.Resolve(insts.ClassNone, 0)
		Expect(errors.Is(err, insts.ErrRegisterOutOfRange)).To(BeTrue())
	})

	It("should support custom classes", func() {
		custom := insts.NewResolver(insts.NewRegClass(insts.ClassShort, insts.SP, insts.LR))
		r, err := custom.Resolve(insts.ClassShort, 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(r).To(Equal(insts.LR))
		_, err = custom.Resolve(insts.ClassShort, 2)
		Expect(err).To(HaveOccurred())
	})
})
