package insts

import (
	"fmt"
	"strings"
)

// Op identifies a decoded operation.
type Op uint16

// Operations known to the default decode tables.
const (
	OpUnknown Op = iota

	// Control
	OpBKPT
	OpNOP
	OpSLEEP
	OpUSER
	OpEI
	OpDI
	OpCBCLR
	OpCBADD1
	OpCBADD2
	OpCBADD3
	OpRTI
	OpSWI

	// Branches
	OpB
	OpBL
	OpBCC

	// Stack
	OpPUSH
	OpPOP

	// Memory
	OpLD
	OpST
	OpLDH
	OpSTH
	OpLDB
	OpSTB
	OpLDSH
	OpSTSH
	OpLEA

	// ALU, in encoding order of the 5-bit operation field
	OpMOV
	OpCMN
	OpADD
	OpBIC
	OpMUL
	OpEOR
	OpSUB
	OpAND
	OpNOT
	OpROR
	OpCMP
	OpRSUB
	OpBTST
	OpOR
	OpBMASK
	OpMAX
	OpBITSET
	OpMIN
	OpBITCLEAR
	OpADDSCALE2
	OpBITFLIP
	OpADDSCALE4
	OpADDSCALE8
	OpADDSCALE16
	OpSIGNEXT
	OpNEG
	OpLSR
	OpMSB
	OpSHL
	OpBREV
	OpASR
	OpABS

	// Vector
	OpVLD
	OpVST
	// OpVector48 and OpVector80 mark vector instructions whose structure
	// is known but whose fields are not decoded.
	OpVector48
	OpVector80

	numOps
)

var opNames = [numOps]string{
	OpUnknown:    "unknown",
	OpBKPT:       "bkpt",
	OpNOP:        "nop",
	OpSLEEP:      "sleep",
	OpUSER:       "user",
	OpEI:         "ei",
	OpDI:         "di",
	OpCBCLR:      "cbclr",
	OpCBADD1:     "cbadd1",
	OpCBADD2:     "cbadd2",
	OpCBADD3:     "cbadd3",
	OpRTI:        "rti",
	OpSWI:        "swi",
	OpB:          "b",
	OpBL:         "bl",
	OpBCC:        "b.cc",
	OpPUSH:       "push",
	OpPOP:        "pop",
	OpLD:         "ld",
	OpST:         "st",
	OpLDH:        "ldh",
	OpSTH:        "sth",
	OpLDB:        "ldb",
	OpSTB:        "stb",
	OpLDSH:       "ldsh",
	OpSTSH:       "stsh",
	OpLEA:        "lea",
	OpMOV:        "mov",
	OpCMN:        "cmn",
	OpADD:        "add",
	OpBIC:        "bic",
	OpMUL:        "mul",
	OpEOR:        "eor",
	OpSUB:        "sub",
	OpAND:        "and",
	OpNOT:        "not",
	OpROR:        "ror",
	OpCMP:        "cmp",
	OpRSUB:       "rsub",
	OpBTST:       "btst",
	OpOR:         "or",
	OpBMASK:      "bmask",
	OpMAX:        "max",
	OpBITSET:     "bitset",
	OpMIN:        "min",
	OpBITCLEAR:   "bitclear",
	OpADDSCALE2:  "addscale2",
	OpBITFLIP:    "bitflip",
	OpADDSCALE4:  "addscale4",
	OpADDSCALE8:  "addscale8",
	OpADDSCALE16: "addscale16",
	OpSIGNEXT:    "signext",
	OpNEG:        "neg",
	OpLSR:        "lsr",
	OpMSB:        "msb",
	OpSHL:        "shl",
	OpBREV:       "brev",
	OpASR:        "asr",
	OpABS:        "abs",
	OpVLD:        "vld",
	OpVST:        "vst",
	OpVector48:   "vector48",
	OpVector80:   "vector80",
}

// String returns the mnemonic.
func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint16(o))
}

// aluOps lists the ALU operations by their 5-bit encoding.
var aluOps = [32]Op{
	OpMOV, OpCMN, OpADD, OpBIC, OpMUL, OpEOR, OpSUB, OpAND,
	OpNOT, OpROR, OpCMP, OpRSUB, OpBTST, OpOR, OpBMASK, OpMAX,
	OpBITSET, OpMIN, OpBITCLEAR, OpADDSCALE2, OpBITFLIP, OpADDSCALE4, OpADDSCALE8, OpADDSCALE16,
	OpSIGNEXT, OpNEG, OpLSR, OpMSB, OpSHL, OpBREV, OpASR, OpABS,
}

// Cond is a 4-bit condition code.
type Cond uint8

// Condition codes. LO and HS are swapped with respect to the ARM ordering.
const (
	CondEQ Cond = iota
	CondNE
	CondLO
	CondHS
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNV
)

var condNames = [16]string{
	"eq", "ne", "lo", "hs", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (c Cond) String() string {
	return condNames[c&0xF]
}

// Opposite returns the inverted condition. Conditions pair up in the low
// bit.
func (c Cond) Opposite() Cond {
	return c ^ 1
}

// OperandKind tags an Operand.
type OperandKind uint8

// Operand kinds.
const (
	OperandNone OperandKind = iota
	OperandReg
	OperandImm
	OperandCond
	// OperandExpr is an address-relative reference; Target holds the
	// resolved address and Imm the offset from the instruction.
	OperandExpr
)

// Operand is one decoded operand.
type Operand struct {
	Kind   OperandKind
	Reg    Reg
	Imm    int64
	Target uint64
}

// RegOperand returns a register operand.
func RegOperand(r Reg) Operand {
	return Operand{Kind: OperandReg, Reg: r}
}

// ImmOperand returns an immediate operand.
func ImmOperand(v int64) Operand {
	return Operand{Kind: OperandImm, Imm: v}
}

// CondOperand returns a condition code operand.
func CondOperand(c Cond) Operand {
	return Operand{Kind: OperandCond, Imm: int64(c)}
}

// ExprOperand returns a reference to address+offset.
func ExprOperand(address uint64, offset int64) Operand {
	return Operand{Kind: OperandExpr, Imm: offset, Target: address + uint64(offset)}
}

// Cond returns the condition of an OperandCond.
func (o Operand) Cond() Cond {
	return Cond(o.Imm)
}

// String names the operand. It is a debugging aid, not assembly syntax.
func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return o.Reg.String()
	case OperandImm:
		return fmt.Sprintf("#%d", o.Imm)
	case OperandCond:
		return o.Cond().String()
	case OperandExpr:
		return fmt.Sprintf("0x%x", o.Target)
	default:
		return "<none>"
	}
}

// Instruction is a decoded instruction. A fresh Instruction is returned by
// every decode call and is owned by the caller.
type Instruction struct {
	Op       Op
	Length   LengthClass
	Shape    Shape
	Address  uint64
	Raw      WideWord
	Operands []Operand
}

// Size returns the encoded size in bytes.
func (i *Instruction) Size() int {
	return i.Length.Bytes()
}

// String returns the mnemonic followed by the operand names.
func (i *Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Op.String()
	}
	parts := make([]string, len(i.Operands))
	for n, o := range i.Operands {
		parts[n] = o.String()
	}
	return i.Op.String() + " " + strings.Join(parts, ", ")
}
