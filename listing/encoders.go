package listing

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"

	"github.com/sarchlab/vc4dis/disasm"
)

type yamlEncoder struct{ opts options }

func (e yamlEncoder) Encode(w io.Writer, listings []*disasm.Listing) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	if err := enc.Encode(NewDocument(listings, e.opts.summary)); err != nil {
		return fmt.Errorf("encode yaml listing: %w", err)
	}
	return enc.Close()
}

// cborEncMode is the deterministic encoding shared by all CBOR encoders.
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

type cborEncoder struct{ opts options }

func (e cborEncoder) Encode(w io.Writer, listings []*disasm.Listing) error {
	if err := cborEncMode.NewEncoder(w).Encode(NewDocument(listings, e.opts.summary)); err != nil {
		return fmt.Errorf("encode cbor listing: %w", err)
	}
	return nil
}

// DecodeCBOR reads a document written by the CBOR encoder.
func DecodeCBOR(r io.Reader) (Document, error) {
	var doc Document
	if err := cbor.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode cbor listing: %w", err)
	}
	return doc, nil
}

// DecodeYAML reads a document written by the YAML encoder.
func DecodeYAML(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml listing: %w", err)
	}
	return doc, nil
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpEncoder dumps the decoded instructions themselves rather than the
// serialized records.
type dumpEncoder struct{ opts options }

func (e dumpEncoder) Encode(w io.Writer, listings []*disasm.Listing) error {
	for _, l := range listings {
		fmt.Fprintf(w, "; range %s\n", l.Range)
		for _, line := range l.Lines {
			if line.Inst != nil {
				dumpConfig.Fdump(w, line.Inst)
				continue
			}
			fmt.Fprintf(w, "; 0x%x %s: %v\n", line.Address, line.Status, line.Err)
		}
	}
	if e.opts.summary {
		dumpConfig.Fdump(w, Summarize(listings))
	}
	return nil
}
