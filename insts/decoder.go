package insts

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Decoder matches instruction values against decode tables. A Decoder is
// immutable after construction and safe for concurrent use.
type Decoder struct {
	tables   map[LengthClass]*Table
	resolver *Resolver
	logger   zerolog.Logger
}

// DecoderOption is a functional option for configuring the Decoder.
type DecoderOption func(*Decoder)

// WithResolver sets the register class resolver.
func WithResolver(r *Resolver) DecoderOption {
	return func(d *Decoder) {
		d.resolver = r
	}
}

// WithTable replaces the table for t's length class.
func WithTable(t *Table) DecoderOption {
	return func(d *Decoder) {
		d.tables[t.Length()] = t
	}
}

// WithoutTable removes the table for a length class.
func WithoutTable(l LengthClass) DecoderOption {
	return func(d *Decoder) {
		delete(d.tables, l)
	}
}

// WithLogger sets the logger used for trace output of rejected candidates.
func WithLogger(l zerolog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = l
	}
}

// NewDecoder creates a decoder over the default tables and registers.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		tables:   make(map[LengthClass]*Table),
		resolver: DefaultResolver(),
		logger:   zerolog.Nop(),
	}
	for _, t := range DefaultTables() {
		d.tables[t.Length()] = t
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Table returns the table used for a length class.
func (d *Decoder) Table(l LengthClass) (*Table, bool) {
	t, ok := d.tables[l]
	return t, ok
}

// Decode decodes value as an instruction of the given length at address.
//
// Candidates are tried in table order. A candidate whose field decode fails
// (for example a register ordinal out of range) is dropped and the next one
// is tried. When no candidate decodes the result is an ErrNoTableMatch
// error wrapping the last field failure. The decoder never retries with a
// different length class.
//
// Entries flagged Unimplemented return their marker instruction together
// with an ErrUnimplemented error.
func (d *Decoder) Decode(value WideWord, length LengthClass, address uint64) (*Instruction, error) {
	t, ok := d.tables[length]
	if !ok {
		return nil, &DecodeError{
			Kind:    KindNoTableMatch,
			Address: address,
			Length:  length,
			Size:    2,
			Err:     fmt.Errorf("no %s-bit decode table", length),
		}
	}

	var lastErr error
	for i := range t.entries {
		e := &t.entries[i]
		if !e.Matches(value) {
			continue
		}

		ops, err := e.decodeOperands(value, address, d.resolver)
		if err != nil {
			d.logger.Trace().
				Uint64("addr", address).
				Str("value", value.String()).
				Err(err).
				Msg("decode candidate rejected")
			lastErr = err
			continue
		}

		inst := &Instruction{
			Op:       e.Op,
			Length:   length,
			Shape:    value.Shape(),
			Address:  address,
			Raw:      value,
			Operands: ops,
		}
		if e.Unimplemented {
			return inst, &DecodeError{
				Kind:    KindUnimplemented,
				Address: address,
				Length:  length,
				Size:    length.Bytes(),
			}
		}
		return inst, nil
	}

	return nil, &DecodeError{
		Kind:    KindNoTableMatch,
		Address: address,
		Length:  length,
		Size:    2,
		Err:     lastErr,
	}
}
