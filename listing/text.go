package listing

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora/v4"

	"github.com/sarchlab/vc4dis/disasm"
)

// bytesColumn fits the hex of the longest (10-byte) instruction.
const bytesColumn = 20

type textEncoder struct {
	opts options
	au   *aurora.Aurora
}

func newTextEncoder(o options) textEncoder {
	return textEncoder{opts: o, au: aurora.New(aurora.WithColors(o.color))}
}

// Encode writes one line per instruction:
//
//	00000002  41c00317    add r1, r2, r3, al
//	0000000c  00a0        <invalid-length>
func (e textEncoder) Encode(w io.Writer, listings []*disasm.Listing) error {
	bw := bufio.NewWriter(w)
	for i, l := range listings {
		if len(listings) > 1 {
			if i > 0 {
				fmt.Fprintln(bw)
			}
			fmt.Fprintln(bw, e.au.Cyan(fmt.Sprintf("; range %s", l.Range)))
		}
		for _, line := range l.Lines {
			fmt.Fprintf(bw, "%08x  %-*s  %s\n",
				line.Address, bytesColumn, hex.EncodeToString(line.Bytes), e.body(line))
		}
	}
	if e.opts.summary {
		e.writeSummary(bw, Summarize(listings))
	}
	return bw.Flush()
}

func (e textEncoder) body(line disasm.Line) string {
	switch {
	case line.Status == disasm.StatusOK:
		return line.Inst.String()
	case line.Status == disasm.StatusUnimplemented && line.Inst != nil:
		return e.au.Yellow(line.Inst.Op.String() + " <unimplemented>").String()
	default:
		return e.au.Red("<" + line.Status.String() + ">").String()
	}
}

func (e textEncoder) writeSummary(w io.Writer, s Summary) {
	var parts []string
	for _, st := range disasm.Statuses() {
		if n := s.Counts[st.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", st, n))
		}
	}
	summary := fmt.Sprintf("; %d lines, %d/%d bytes decoded (%.1f%%)",
		s.Lines, s.Covered, s.Bytes, 100*s.Coverage())
	if len(parts) > 0 {
		summary += ", " + strings.Join(parts, " ")
	}
	fmt.Fprintln(w, e.au.Faint(summary))
}
