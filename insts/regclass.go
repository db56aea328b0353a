package insts

import (
	"fmt"
	"sync"
)

// Reg is a canonical register identifier. RegNone is the zero value.
type Reg uint8

// Canonical registers, in hardware numbering order.
const (
	RegNone Reg = iota
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	R16
	R17
	R18
	R19
	R20
	R21
	R22
	R23
	R24
	SP // r25
	LR // r26
	R27
	R28
	R29
	SR // r30
	PC // r31
)

// RegFromNumber returns the register with hardware number n (0-31).
func RegFromNumber(n uint8) Reg {
	if n > 31 {
		return RegNone
	}
	return R0 + Reg(n)
}

// Number returns the hardware register number (r25 is sp, r31 is pc).
func (r Reg) Number() uint8 {
	return uint8(r - R0)
}

// String returns the lower case register name.
func (r Reg) String() string {
	switch r {
	case RegNone:
		return "<none>"
	case SP:
		return "sp"
	case LR:
		return "lr"
	case SR:
		return "sr"
	case PC:
		return "pc"
	}
	if r > PC {
		return fmt.Sprintf("<reg %d>", uint8(r))
	}
	return fmt.Sprintf("r%d", r.Number())
}

// ClassID names a register class.
type ClassID uint8

// Register classes.
const (
	ClassNone ClassID = iota
	// ClassLow holds the registers reachable from 4-bit fields of 16-bit
	// instructions. Its historical bound is 16 inclusive.
	ClassLow
	// ClassInt holds the general registers r0 to sr, excluding pc.
	ClassInt
	// ClassAll holds every scalar register.
	ClassAll
	// ClassShort holds r0 to r7, addressable from 3-bit fields.
	ClassShort
)

func (c ClassID) String() string {
	switch c {
	case ClassLow:
		return "LowReg"
	case ClassInt:
		return "IntReg"
	case ClassAll:
		return "AllReg"
	case ClassShort:
		return "ShortReg"
	default:
		return "NoClass"
	}
}

// RegClass is a bounded, ordered set of registers.
type RegClass struct {
	ID   ClassID
	regs []Reg
}

// NewRegClass creates a class whose ordinal i maps to regs[i].
func NewRegClass(id ClassID, regs ...Reg) RegClass {
	return RegClass{ID: id, regs: append([]Reg(nil), regs...)}
}

// Bound returns the largest valid ordinal.
func (c RegClass) Bound() uint64 {
	return uint64(len(c.regs) - 1)
}

// Len returns the number of registers in the class.
func (c RegClass) Len() int {
	return len(c.regs)
}

// Contains reports whether r is a member of the class.
func (c RegClass) Contains(r Reg) bool {
	for _, m := range c.regs {
		if m == r {
			return true
		}
	}
	return false
}

// Resolver validates register ordinals against their class and maps them to
// canonical registers. A Resolver is immutable after construction.
type Resolver struct {
	classes map[ClassID]RegClass
}

// NewResolver creates a resolver over the given classes.
func NewResolver(classes ...RegClass) *Resolver {
	r := &Resolver{classes: make(map[ClassID]RegClass, len(classes))}
	for _, c := range classes {
		r.classes[c.ID] = c
	}
	return r
}

// Class returns the class with the given id.
func (r *Resolver) Class(id ClassID) (RegClass, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Resolve maps ordinal within class id to its canonical register. Ordinals
// above the class bound fail with an error matching ErrRegisterOutOfRange.
func (r *Resolver) Resolve(id ClassID, ordinal uint64) (Reg, error) {
	c, ok := r.classes[id]
	if !ok {
		return RegNone, fmt.Errorf("%w: unknown register class %d", ErrRegisterOutOfRange, id)
	}
	if ordinal > c.Bound() {
		return RegNone, fmt.Errorf("%w: %s ordinal %d above bound %d",
			ErrRegisterOutOfRange, id, ordinal, c.Bound())
	}
	return c.regs[ordinal], nil
}

// regRange returns the registers with hardware numbers first..last.
func regRange(first, last uint8) []Reg {
	regs := make([]Reg, 0, last-first+1)
	for n := first; n <= last; n++ {
		regs = append(regs, RegFromNumber(n))
	}
	return regs
}

// DefaultResolver returns the process-wide resolver for the scalar register
// file. It is built on first use and never modified.
var DefaultResolver = sync.OnceValue(func() *Resolver {
	return NewResolver(
		NewRegClass(ClassLow, regRange(0, 16)...),
		NewRegClass(ClassInt, regRange(0, 30)...),
		NewRegClass(ClassAll, regRange(0, 31)...),
		NewRegClass(ClassShort, regRange(0, 7)...),
	)
})
