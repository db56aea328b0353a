// Package insts provides VideoCore IV instruction definitions and decoding.
//
// This package turns assembled instruction values into structured
// instructions. It provides:
//   - WideWord, the 80-bit instruction value with bitwise and modular
//     arithmetic helpers
//   - LengthClass and Shape, the five instruction groups and their sizes
//   - register classes and the ordinal Resolver
//   - mask/value decode tables and the Decoder that executes them
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(insts.Word(0x4221), insts.Length16, 0x1000) // add r1, r2
//	fmt.Printf("Op: %v, Operands: %v\n", inst.Op, inst.Operands)
//
// Reading values out of a byte stream is the job of package reader.
package insts
