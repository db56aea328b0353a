package insts

import (
	"cmp"
	"fmt"
	"slices"
)

// FieldKind selects how an operand field is decoded.
type FieldKind uint8

// Field kinds.
const (
	// FieldReg extracts a register ordinal and resolves it through Class.
	FieldReg FieldKind = iota + 1
	// FieldFixedReg emits an implicit register without reading any bits.
	FieldFixedReg
	// FieldImm extracts an unsigned immediate.
	FieldImm
	// FieldSImm extracts a sign-extended immediate.
	FieldSImm
	// FieldPCRel extracts a sign-extended offset and emits a reference to
	// the instruction address plus that offset.
	FieldPCRel
	// FieldCond extracts a 4-bit condition code.
	FieldCond
	// FieldMem emits Base followed by Disp.
	FieldMem
	// FieldRegBase maps a 2-bit push/pop base selector to r0, r6, r16 or
	// r24 of Class.
	FieldRegBase
)

// BitRange is a contiguous run of instruction bits starting at Lo.
type BitRange struct {
	Lo    uint
	Width uint
}

// Field describes one operand extraction.
type Field struct {
	Kind  FieldKind
	Class ClassID
	// Bits lists the value segments, most significant first.
	Bits []BitRange
	// SignBit is the instruction bit holding the sign of a signed field.
	// A negative SignBit means the top bit of the concatenated value.
	SignBit int
	// Scale is a left shift applied to immediates and offsets.
	Scale uint
	// Fixed is the register emitted by FieldFixedReg.
	Fixed Reg
	// Base and Disp are the parts of a FieldMem.
	Base *Field
	Disp *Field
}

// Bits is shorthand for a BitRange.
func Bits(lo, width uint) BitRange {
	return BitRange{Lo: lo, Width: width}
}

// RegField decodes width bits at lo as a register of class.
func RegField(class ClassID, lo, width uint) Field {
	return Field{Kind: FieldReg, Class: class, Bits: []BitRange{Bits(lo, width)}, SignBit: -1}
}

// FixedRegField emits r without consuming bits.
func FixedRegField(r Reg) Field {
	return Field{Kind: FieldFixedReg, Fixed: r, SignBit: -1}
}

// ImmField decodes an unsigned immediate scaled by 1<<scale.
func ImmField(scale uint, bits ...BitRange) Field {
	return Field{Kind: FieldImm, Bits: bits, Scale: scale, SignBit: -1}
}

// SImmField decodes a signed immediate, scaled by 1<<scale, whose sign is
// the top bit of the concatenated value.
func SImmField(scale uint, bits ...BitRange) Field {
	return Field{Kind: FieldSImm, Bits: bits, Scale: scale, SignBit: -1}
}

// SImmSignField decodes a signed immediate whose sign lives at signBit,
// outside the value bits.
func SImmSignField(signBit uint, bits ...BitRange) Field {
	return Field{Kind: FieldSImm, Bits: bits, SignBit: int(signBit)}
}

// PCRelField decodes a signed offset, scaled by 1<<scale, relative to the
// instruction address.
func PCRelField(scale uint, bits ...BitRange) Field {
	return Field{Kind: FieldPCRel, Bits: bits, Scale: scale, SignBit: -1}
}

// PCRelSignField is PCRelField with a relocated sign bit.
func PCRelSignField(signBit uint, bits ...BitRange) Field {
	return Field{Kind: FieldPCRel, Bits: bits, SignBit: int(signBit)}
}

// CondField decodes a 4-bit condition code at lo.
func CondField(lo uint) Field {
	return Field{Kind: FieldCond, Bits: []BitRange{Bits(lo, 4)}, SignBit: -1}
}

// MemField decodes a base register followed by a displacement.
func MemField(base, disp Field) Field {
	return Field{Kind: FieldMem, Base: &base, Disp: &disp, SignBit: -1}
}

// RegBaseField decodes the 2-bit register base selector at lo.
func RegBaseField(class ClassID, lo uint) Field {
	return Field{Kind: FieldRegBase, Class: class, Bits: []BitRange{Bits(lo, 2)}, SignBit: -1}
}

var regBaseOrdinals = [4]uint64{0, 6, 16, 24}

// width returns the total number of value bits.
func (f *Field) width() uint {
	var w uint
	for _, b := range f.Bits {
		w += b.Width
	}
	return w
}

// extract concatenates the value segments.
func (f *Field) extract(v WideWord) uint64 {
	var out uint64
	for _, b := range f.Bits {
		out = out<<b.Width | v.Bits(b.Lo, b.Width)
	}
	return out
}

// signed extracts the field and sign-extends it: a set sign bit yields
// value - 2^width.
func (f *Field) signed(v WideWord) int64 {
	raw := f.extract(v)
	w := f.width()

	var negative bool
	if f.SignBit >= 0 {
		negative = v.Bit(uint(f.SignBit))
	} else if w > 0 {
		negative = raw>>(w-1)&1 == 1
	}

	s := int64(raw)
	if negative && w < 64 {
		s -= int64(1) << w
	}
	return s << f.Scale
}

// decode appends the operands of f to dst.
func (f *Field) decode(dst []Operand, v WideWord, address uint64, res *Resolver) ([]Operand, error) {
	switch f.Kind {
	case FieldReg:
		r, err := res.Resolve(f.Class, f.extract(v))
		if err != nil {
			return dst, err
		}
		return append(dst, RegOperand(r)), nil
	case FieldFixedReg:
		return append(dst, RegOperand(f.Fixed)), nil
	case FieldImm:
		return append(dst, ImmOperand(int64(f.extract(v)<<f.Scale))), nil
	case FieldSImm:
		return append(dst, ImmOperand(f.signed(v))), nil
	case FieldPCRel:
		return append(dst, ExprOperand(address, f.signed(v))), nil
	case FieldCond:
		return append(dst, CondOperand(Cond(f.extract(v)))), nil
	case FieldMem:
		var err error
		dst, err = f.Base.decode(dst, v, address, res)
		if err != nil {
			return dst, err
		}
		return f.Disp.decode(dst, v, address, res)
	case FieldRegBase:
		r, err := res.Resolve(f.Class, regBaseOrdinals[f.extract(v)&3])
		if err != nil {
			return dst, err
		}
		return append(dst, RegOperand(r)), nil
	default:
		return dst, fmt.Errorf("field kind %d not decodable", f.Kind)
	}
}

// clone returns a deep copy sharing no storage with f.
func (f *Field) clone() Field {
	c := *f
	c.Bits = slices.Clone(f.Bits)
	if f.Base != nil {
		base := f.Base.clone()
		c.Base = &base
	}
	if f.Disp != nil {
		disp := f.Disp.clone()
		c.Disp = &disp
	}
	return c
}

// validate checks the field against an instruction width.
func (f *Field) validate(bits uint) error {
	switch f.Kind {
	case FieldMem:
		if f.Base == nil || f.Disp == nil {
			return fmt.Errorf("memory field needs base and displacement")
		}
		if err := f.Base.validate(bits); err != nil {
			return err
		}
		return f.Disp.validate(bits)
	case FieldFixedReg:
		return nil
	case FieldReg, FieldImm, FieldSImm, FieldPCRel, FieldCond, FieldRegBase:
	default:
		return fmt.Errorf("unknown field kind %d", f.Kind)
	}

	if len(f.Bits) == 0 {
		return fmt.Errorf("field kind %d has no bits", f.Kind)
	}
	if f.width() > 64 {
		return fmt.Errorf("field is %d bits wide, limit is 64", f.width())
	}
	for _, b := range f.Bits {
		if b.Width == 0 || b.Lo+b.Width > bits {
			return fmt.Errorf("bits [%d+%d] outside %d-bit instruction", b.Lo, b.Width, bits)
		}
	}
	if f.SignBit >= int(bits) {
		return fmt.Errorf("sign bit %d outside %d-bit instruction", f.SignBit, bits)
	}
	return nil
}

// Entry is one decode table row: instructions with value&Mask == Value
// decode as Op with the listed fields.
type Entry struct {
	Op     Op
	Mask   WideWord
	Value  WideWord
	Fields []Field
	// Unimplemented marks entries that recognize an instruction group
	// without decoding its fields.
	Unimplemented bool
}

// Matches reports whether v has the entry's fixed bits.
func (e Entry) Matches(v WideWord) bool {
	return v.And(e.Mask).Equal(e.Value)
}

// Specificity is the number of fixed bits.
func (e Entry) Specificity() int {
	return e.Mask.OnesCount()
}

// clone returns a deep copy of the entry and its fields.
func (e Entry) clone() Entry {
	if e.Fields == nil {
		return e
	}
	fields := make([]Field, len(e.Fields))
	for i := range e.Fields {
		fields[i] = e.Fields[i].clone()
	}
	e.Fields = fields
	return e
}

// decodeOperands runs every field in order. On failure the partially
// built operand list is dropped.
func (e Entry) decodeOperands(v WideWord, address uint64, res *Resolver) ([]Operand, error) {
	ops := make([]Operand, 0, len(e.Fields)+1)
	var err error
	for i := range e.Fields {
		ops, err = e.Fields[i].decode(ops, v, address, res)
		if err != nil {
			return nil, fmt.Errorf("%s operand %d: %w", e.Op, i, err)
		}
	}
	return ops, nil
}

// Table is an immutable decode table for one length class.
type Table struct {
	name    string
	length  LengthClass
	entries []Entry
}

// NewTable validates and freezes entries into a table. Entries are ordered
// by specificity, most fixed bits first; entries with equal specificity keep
// their declaration order.
func NewTable(name string, length LengthClass, entries ...Entry) (*Table, error) {
	bits := uint(length.Bits())
	if bits == 0 {
		return nil, fmt.Errorf("table %s: invalid length class", name)
	}
	width := Mask(bits)

	frozen := make([]Entry, len(entries))
	for i, e := range entries {
		if !e.Value.And(e.Mask.Not()).IsZero() {
			return nil, fmt.Errorf("table %s: entry %d (%s) value %s has bits outside mask %s",
				name, i, e.Op, e.Value, e.Mask)
		}
		if !e.Mask.And(width.Not()).IsZero() {
			return nil, fmt.Errorf("table %s: entry %d (%s) mask exceeds %d bits", name, i, e.Op, bits)
		}
		for j := range e.Fields {
			if err := e.Fields[j].validate(bits); err != nil {
				return nil, fmt.Errorf("table %s: entry %d (%s) field %d: %w", name, i, e.Op, j, err)
			}
		}
		frozen[i] = e.clone()
	}

	slices.SortStableFunc(frozen, func(a, b Entry) int {
		return cmp.Compare(b.Specificity(), a.Specificity())
	})

	return &Table{name: name, length: length, entries: frozen}, nil
}

// MustTable is NewTable for static tables; it panics on invalid input.
func MustTable(name string, length LengthClass, entries ...Entry) *Table {
	t, err := NewTable(name, length, entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Length returns the length class the table decodes.
func (t *Table) Length() LengthClass { return t.length }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns a copy of the i-th entry in match order.
func (t *Table) Entry(i int) Entry { return t.entries[i].clone() }

// Lookup returns copies of the entries matching v, in match order.
func (t *Table) Lookup(v WideWord) []Entry {
	var out []Entry
	for i := range t.entries {
		if t.entries[i].Matches(v) {
			out = append(out, t.entries[i].clone())
		}
	}
	return out
}
