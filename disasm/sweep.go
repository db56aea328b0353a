package disasm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/memory"
)

// progressStep is the number of bytes between progress callbacks.
const progressStep = 4096

// Range is a half-open address range [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// Len returns the number of bytes in the range.
func (r Range) Len() uint64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", r.Start, r.End)
}

// Line is one step of a linear sweep.
type Line struct {
	Address uint64
	// Size is the number of bytes consumed by this step.
	Size int
	// Bytes holds the consumed bytes, or as many of them as the source
	// could supply.
	Bytes  []byte
	Inst   *insts.Instruction
	Status Status
	Err    error
}

// Listing is the result of sweeping one range.
type Listing struct {
	Range Range
	Lines []Line
	// Coverage has bit i set when byte Range.Start+i belongs to a decoded
	// instruction.
	Coverage *bitset.BitSet
}

// CoveredBytes returns the number of bytes owned by decoded instructions.
func (l *Listing) CoveredBytes() uint64 {
	return uint64(l.Coverage.Count())
}

// Count returns the number of lines with status s.
func (l *Listing) Count(s Status) int {
	n := 0
	for i := range l.Lines {
		if l.Lines[i].Status == s {
			n++
		}
	}
	return n
}

// Covered reports whether address belongs to a decoded instruction.
func (l *Listing) Covered(address uint64) bool {
	if address < l.Range.Start || address >= l.Range.End {
		return false
	}
	return l.Coverage.Test(uint(address - l.Range.Start))
}

// Sweep decodes [start, end) linearly. Each step advances by the size the
// decoder reports, so a failure never stalls the sweep. Instructions
// reaching past end fail as read failures.
//
// Cancellation is checked between instructions; a cancelled sweep returns
// the lines decoded so far together with the context error.
func (d *Disassembler) Sweep(ctx context.Context, src memory.ByteSource, start, end uint64) (*Listing, error) {
	r := Range{Start: start, End: end}
	var done atomic.Uint64
	return d.sweep(ctx, src, r, &done, r.Len())
}

// SweepRanges sweeps every range, up to the configured worker count at a
// time. Listings are returned in the order of ranges. The first failing
// sweep cancels the others.
func (d *Disassembler) SweepRanges(ctx context.Context, src memory.ByteSource, ranges []Range) ([]*Listing, error) {
	var total uint64
	for _, r := range ranges {
		total += r.Len()
	}

	listings := make([]*Listing, len(ranges))
	var done atomic.Uint64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, r := range ranges {
		g.Go(func() error {
			l, err := d.sweep(ctx, src, r, &done, total)
			listings[i] = l
			if err != nil {
				return fmt.Errorf("sweep %s: %w", r, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return listings, err
	}
	return listings, nil
}

func (d *Disassembler) sweep(
	ctx context.Context,
	src memory.ByteSource,
	r Range,
	done *atomic.Uint64,
	total uint64,
) (*Listing, error) {
	listing := &Listing{
		Range:    r,
		Coverage: bitset.New(uint(r.Len())),
	}
	bounded := memory.NewLimit(src, r.End)

	var sinceReport uint64
	for addr := r.Start; addr < r.End; {
		if err := ctx.Err(); err != nil {
			return listing, err
		}

		inst, size, err := d.Instruction(bounded, addr)
		line := Line{
			Address: addr,
			Size:    size,
			Bytes:   readAvailable(bounded, addr, size),
			Inst:    inst,
			Status:  StatusOf(err),
			Err:     err,
		}
		listing.Lines = append(listing.Lines, line)

		if line.Status.Decoded() {
			off := uint(addr - r.Start)
			for i := uint(0); i < uint(size); i++ {
				listing.Coverage.Set(off + i)
			}
		}

		step := uint64(size)
		if step > r.End-addr {
			step = r.End - addr
		}
		addr += step

		sinceReport += step
		if sinceReport >= progressStep || addr >= r.End {
			d.report(done.Add(sinceReport), total)
			sinceReport = 0
		}
	}

	d.logger.Debug().
		Stringer("range", r).
		Int("lines", len(listing.Lines)).
		Uint64("covered", listing.CoveredBytes()).
		Msg("sweep finished")

	return listing, nil
}

func (d *Disassembler) report(done, total uint64) {
	if d.progress != nil {
		d.progress(done, total)
	}
}

// readAvailable returns the size bytes at address, or the longest prefix of
// them the source holds. The result is a copy.
func readAvailable(src memory.ByteSource, address uint64, size int) []byte {
	for n := size; n > 0; n-- {
		if b, err := src.ReadBytes(address, n); err == nil {
			return append([]byte(nil), b...)
		}
	}
	return nil
}
