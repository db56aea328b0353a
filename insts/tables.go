package insts

import (
	"slices"
	"sync"
)

// DefaultTables returns the process-wide decode tables, one per length
// class. They are built on first use and never modified; the returned slice
// is the caller's own.
func DefaultTables() []*Table {
	return slices.Clone(defaultTables())
}

var defaultTables = sync.OnceValue(func() []*Table {
	return []*Table{
		MustTable("scalar16", Length16, table16()...),
		MustTable("scalar32", Length32, table32()...),
		MustTable("scalar48+vector48", Length48, table48()...),
		MustTable("vector80", Length80, table80()...),
	}
})

// entry builds a table row for instructions up to 64 bits wide.
func entry(op Op, mask, value uint64, fields ...Field) Entry {
	return Entry{Op: op, Mask: Word(mask), Value: Word(value), Fields: fields}
}

// memWidthOps lists the load/store variants selected by a 2-bit width
// field and a store bit.
var memWidthOps = [4][2]Op{
	{OpLD, OpST},
	{OpLDH, OpSTH},
	{OpLDB, OpSTB},
	{OpLDSH, OpSTSH},
}

// table16 covers the 16-bit scalar instructions.
//
//	0000 0000 0000 oooo  control
//	0000 0000 0ttd dddd  swi/b/bl rd
//	0000 001p lbbm mmmm  push/pop rb, m
//	0000 01so oooo dddd  ld/st rd, (sp+o*4)
//	0000 1wws ssss dddd  ld<w>/st<w> rd, (rs)
//	0001 0ooo oood dddd  lea rd, (sp+o*4)
//	0001 1ccc cooo oooo  b<cc> $+o*2
//	001s uuuu ssss dddd  ld/st rd, (rs+u*4)
//	010p pppp ssss dddd  alu rd, rs
//	011q qqqu uuuu dddd  alu rd, #u
func table16() []Entry {
	control := []Op{
		OpBKPT, OpNOP, OpSLEEP, OpUSER, OpEI, OpDI,
		OpCBCLR, OpCBADD1, OpCBADD2, OpCBADD3, OpRTI,
	}

	var t []Entry
	for i, op := range control {
		t = append(t, entry(op, 0xFFFF, uint64(i)))
	}

	t = append(t,
		entry(OpSWI, 0xFFE0, 0x0020, RegField(ClassAll, 0, 5)),
		entry(OpB, 0xFFE0, 0x0040, RegField(ClassAll, 0, 5)),
		entry(OpBL, 0xFFE0, 0x0060, RegField(ClassAll, 0, 5)),

		entry(OpPOP, 0xFF80, 0x0200, RegBaseField(ClassAll, 5), ImmField(0, Bits(0, 5))),
		entry(OpPUSH, 0xFF80, 0x0280, RegBaseField(ClassAll, 5), ImmField(0, Bits(0, 5))),
		entry(OpPOP, 0xFF80, 0x0300, RegBaseField(ClassAll, 5), ImmField(0, Bits(0, 5)), FixedRegField(PC)),
		entry(OpPUSH, 0xFF80, 0x0380, RegBaseField(ClassAll, 5), ImmField(0, Bits(0, 5)), FixedRegField(LR)),

		entry(OpLD, 0xFE00, 0x0400, RegField(ClassLow, 0, 4),
			MemField(FixedRegField(SP), ImmField(2, Bits(4, 5)))),
		entry(OpST, 0xFE00, 0x0600, RegField(ClassLow, 0, 4),
			MemField(FixedRegField(SP), ImmField(2, Bits(4, 5)))),
	)

	for w, pair := range memWidthOps {
		for s, op := range pair {
			value := uint64(0x0800 | w<<9 | s<<8)
			t = append(t, entry(op, 0xFF00, value, RegField(ClassLow, 0, 4), RegField(ClassLow, 4, 4)))
		}
	}

	t = append(t,
		entry(OpLEA, 0xF800, 0x1000, RegField(ClassAll, 0, 5),
			MemField(FixedRegField(SP), SImmField(2, Bits(5, 6)))),
		entry(OpBCC, 0xF800, 0x1800, CondField(7), PCRelField(1, Bits(0, 7))),

		entry(OpLD, 0xF000, 0x2000, RegField(ClassLow, 0, 4),
			MemField(RegField(ClassLow, 4, 4), ImmField(2, Bits(8, 4)))),
		entry(OpST, 0xF000, 0x3000, RegField(ClassLow, 0, 4),
			MemField(RegField(ClassLow, 4, 4), ImmField(2, Bits(8, 4)))),
	)

	for p, op := range aluOps {
		t = append(t, entry(op, 0xFF00, uint64(0x4000|p<<8),
			RegField(ClassLow, 0, 4), RegField(ClassLow, 4, 4)))
	}
	// The immediate forms only exist for even operation numbers.
	for q := 0; q < 16; q++ {
		t = append(t, entry(aluOps[q<<1], 0xFE00, uint64(0x6000|q<<9),
			RegField(ClassLow, 0, 4), ImmField(0, Bits(4, 5))))
	}

	return t
}

// table32 covers the 32-bit scalar instructions. The first halfword read
// occupies bits 31..16.
//
//	1000 cccc 0ooo oooo oooo oooo oooo oooo  b<cc> $+o*2
//	1001 oooo Looo oooo oooo oooo oooo oooo  b/bl $+o*2
//	1100 00pp pppd dddd aaaa accc c00b bbbb  alu<cc> rd, ra, rb
//	1100 01pp pppd dddd aaaa aiii iiii iiii  alu rd, ra, #i
//	1100 10pp pppd dddd iiii iiii iiii iiii  alu rd, #i
//	1100 1100 000d dddd oooo oooo oooo oooo  lea rd, $+o
//	1101 001o wwsd dddd ssss sooo oooo oooo  ld<w>/st<w> rd, (rs+o)
func table32() []Entry {
	t := []Entry{
		entry(OpBCC, 0xF0800000, 0x80000000, CondField(24), PCRelField(1, Bits(0, 23))),
		entry(OpB, 0xF0800000, 0x90000000, PCRelField(1, Bits(24, 4), Bits(0, 23))),
		entry(OpBL, 0xF0800000, 0x90800000, PCRelField(1, Bits(24, 4), Bits(0, 23))),
		entry(OpLEA, 0xFFE00000, 0xCC000000, RegField(ClassInt, 16, 5), PCRelField(0, Bits(0, 16))),
	}

	for p, op := range aluOps {
		pp := uint64(p) << 21
		t = append(t,
			entry(op, 0xFFE00060, 0xC0000000|pp,
				RegField(ClassInt, 16, 5), RegField(ClassAll, 11, 5), RegField(ClassAll, 0, 5), CondField(7)),
			entry(op, 0xFFE00000, 0xC4000000|pp,
				RegField(ClassInt, 16, 5), RegField(ClassAll, 11, 5), SImmField(0, Bits(0, 11))),
			entry(op, 0xFFE00000, 0xC8000000|pp,
				RegField(ClassInt, 16, 5), SImmField(0, Bits(0, 16))),
		)
	}

	// The 12-bit offset keeps its sign at bit 24, away from its value bits.
	for w, pair := range memWidthOps {
		for s, op := range pair {
			value := uint64(0xD2000000 | w<<22 | s<<21)
			t = append(t,
				entry(op, 0xFEE00000, value,
					RegField(ClassInt, 16, 5),
					MemField(RegField(ClassInt, 11, 5), SImmSignField(24, Bits(0, 11)))),
				// rs = pc selects the pc-relative form.
				entry(op, 0xFEE0F800, value|0xF800,
					RegField(ClassInt, 16, 5),
					PCRelSignField(24, Bits(0, 11))),
			)
		}
	}

	return t
}

// table48 covers the 48-bit scalar and vector instructions. Scalar values
// carry the leading halfword in bits 47..32; the top five bits tell the
// scalar (1110x) and vector (11110) groups apart.
//
//	1110 0000 0000 0000  o32     b $+o
//	1110 0001 0000 0000  o32     bl $+o
//	1110 0101 000d dddd  o32     lea rd, $+o
//	1110 0110 wwsd dddd  rs:5 o27  ld<w>/st<w> rd, (rs+o)
//	1110 10pp pppd dddd  i32     alu rd, #i
//	1111 0000 ...                vld   vreg, (rs+o)
//	1111 0001 ...                vst   vreg, (rs+o)
//	1111 0xxx ...                other vector ops, not decoded
func table48() []Entry {
	const hiShift = 32

	t := []Entry{
		entry(OpB, 0xFFFF<<hiShift, 0xE000<<hiShift, PCRelField(0, Bits(0, 32))),
		entry(OpBL, 0xFFFF<<hiShift, 0xE100<<hiShift, PCRelField(0, Bits(0, 32))),
		entry(OpLEA, 0xFFE0<<hiShift, 0xE500<<hiShift, RegField(ClassInt, 32, 5), PCRelField(0, Bits(0, 32))),
	}

	for w, pair := range memWidthOps {
		for s, op := range pair {
			value := uint64(0xE600|w<<6|s<<5) << hiShift
			t = append(t,
				entry(op, 0xFFE0<<hiShift, value,
					RegField(ClassInt, 32, 5),
					MemField(RegField(ClassInt, 27, 5), SImmField(0, Bits(0, 27)))),
				entry(op, 0xFFE0<<hiShift|0xF8000000, value|0xF8000000,
					RegField(ClassInt, 32, 5),
					PCRelField(0, Bits(0, 27))),
			)
		}
	}

	for p, op := range aluOps {
		t = append(t, entry(op, 0xFFE0<<hiShift, uint64(0xE800|p<<5)<<hiShift,
			RegField(ClassInt, 32, 5), SImmField(0, Bits(0, 32))))
	}

	// Vector memory operations: vreg is bits 31..22, rs bits 18..16 and a
	// 16-bit displacement.
	vmem := func(op Op, prefix uint64) Entry {
		return entry(op, 0xFF00<<hiShift, prefix<<hiShift,
			ImmField(0, Bits(22, 10)),
			MemField(RegField(ClassShort, 16, 3), SImmField(0, Bits(0, 16))))
	}
	t = append(t,
		vmem(OpVLD, 0xF000),
		vmem(OpVST, 0xF100),
		Entry{
			Op:            OpVector48,
			Mask:          Word(0xF800 << hiShift),
			Value:         Word(0xF000 << hiShift),
			Unimplemented: true,
		},
	)

	return t
}

// table80 covers the 80-bit vector instructions. The leading halfword is
// the high part of the value.
//
//	hi 1111 1000 xxxx xsss  lo vreg:10 ... o32  vld vreg, (rs+o)
//	hi 1111 1001 xxxx xsss  lo vreg:10 ... o32  vst vreg, (rs+o)
//	hi 1111 1xxx ...                            other, not decoded
func table80() []Entry {
	vmem := func(op Op, prefix uint16) Entry {
		return Entry{
			Op:    op,
			Mask:  WordParts(0xFF00, 0),
			Value: WordParts(prefix, 0),
			Fields: []Field{
				ImmField(0, Bits(54, 10)),
				// rs sits in the high part, above the 64-bit boundary.
				MemField(RegField(ClassShort, 64, 3), SImmField(0, Bits(0, 32))),
			},
		}
	}

	return []Entry{
		vmem(OpVLD, 0xF800),
		vmem(OpVST, 0xF900),
		{
			Op:            OpVector80,
			Mask:          WordParts(0xF800, 0),
			Value:         WordParts(0xF800, 0),
			Unimplemented: true,
		},
	}
}
