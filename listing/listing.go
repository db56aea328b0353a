// Package listing renders sweep results as text, YAML, CBOR or a Go value
// dump.
package listing

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/sarchlab/vc4dis/disasm"
)

// Format names an output encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
	FormatDump Format = "dump"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatYAML, FormatCBOR, FormatDump}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown listing format %q", s)
}

// Encoder writes listings to a writer.
type Encoder interface {
	Encode(w io.Writer, listings []*disasm.Listing) error
}

type options struct {
	color   bool
	summary bool
}

// Option configures an encoder.
type Option func(*options)

// WithColor enables terminal colors in the text format.
func WithColor(on bool) Option {
	return func(o *options) {
		o.color = on
	}
}

// WithSummary appends a summary to the output.
func WithSummary(on bool) Option {
	return func(o *options) {
		o.summary = on
	}
}

// NewEncoder returns the encoder for format.
func NewEncoder(format Format, opts ...Option) (Encoder, error) {
	o := options{summary: true}
	for _, opt := range opts {
		opt(&o)
	}

	switch format {
	case FormatText:
		return newTextEncoder(o), nil
	case FormatYAML:
		return yamlEncoder{opts: o}, nil
	case FormatCBOR:
		return cborEncoder{opts: o}, nil
	case FormatDump:
		return dumpEncoder{opts: o}, nil
	default:
		return nil, fmt.Errorf("unknown listing format %q", format)
	}
}

// Document is the serialized form of a set of listings.
type Document struct {
	Ranges  []RangeRecord `yaml:"ranges" cbor:"ranges"`
	Summary *Summary      `yaml:"summary,omitempty" cbor:"summary,omitempty"`
}

// RangeRecord is one swept range.
type RangeRecord struct {
	Start uint64   `yaml:"start" cbor:"start"`
	End   uint64   `yaml:"end" cbor:"end"`
	Lines []Record `yaml:"lines" cbor:"lines"`
}

// Record is one listing line.
type Record struct {
	Address  uint64   `yaml:"address" cbor:"address"`
	Size     int      `yaml:"size" cbor:"size"`
	Bytes    string   `yaml:"bytes" cbor:"bytes"`
	Status   string   `yaml:"status" cbor:"status"`
	Mnemonic string   `yaml:"mnemonic,omitempty" cbor:"mnemonic,omitempty"`
	Operands []string `yaml:"operands,omitempty" cbor:"operands,omitempty"`
	Error    string   `yaml:"error,omitempty" cbor:"error,omitempty"`
}

// NewRecord converts a listing line.
func NewRecord(l disasm.Line) Record {
	r := Record{
		Address: l.Address,
		Size:    l.Size,
		Bytes:   hex.EncodeToString(l.Bytes),
		Status:  l.Status.String(),
	}
	if l.Inst != nil {
		r.Mnemonic = l.Inst.Op.String()
		for _, o := range l.Inst.Operands {
			r.Operands = append(r.Operands, o.String())
		}
	}
	if l.Err != nil {
		r.Error = l.Err.Error()
	}
	return r
}

// NewDocument converts listings, optionally with a summary.
func NewDocument(listings []*disasm.Listing, withSummary bool) Document {
	var doc Document
	for _, l := range listings {
		rr := RangeRecord{Start: l.Range.Start, End: l.Range.End, Lines: make([]Record, 0, len(l.Lines))}
		for _, line := range l.Lines {
			rr.Lines = append(rr.Lines, NewRecord(line))
		}
		doc.Ranges = append(doc.Ranges, rr)
	}
	if withSummary {
		s := Summarize(listings)
		doc.Summary = &s
	}
	return doc
}
