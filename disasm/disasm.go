// Package disasm turns byte sources into decoded instructions.
//
// A Disassembler reads one instruction at a time and always reports how many
// bytes it consumed, so callers can resume after a failure. Sweep and
// SweepRanges walk address ranges linearly.
package disasm

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/memory"
	"github.com/sarchlab/vc4dis/reader"
)

// ProgressFunc is called with the number of bytes swept so far and the
// total number of bytes to sweep. It may be called from several goroutines.
type ProgressFunc func(done, total uint64)

// Disassembler decodes instructions from byte sources. It is safe for
// concurrent use.
type Disassembler struct {
	decoder  *insts.Decoder
	logger   zerolog.Logger
	workers  int
	progress ProgressFunc
}

// Option is a functional option for configuring the Disassembler.
type Option func(*Disassembler)

// WithDecoder sets the instruction decoder.
func WithDecoder(d *insts.Decoder) Option {
	return func(da *Disassembler) {
		da.decoder = d
	}
}

// WithLogger sets the logger. Decode failures are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(da *Disassembler) {
		da.logger = l
	}
}

// WithWorkers bounds the number of ranges SweepRanges decodes at once.
// Values below 1 mean one worker.
func WithWorkers(n int) Option {
	return func(da *Disassembler) {
		da.workers = n
	}
}

// WithProgress sets a progress callback for sweeps.
func WithProgress(fn ProgressFunc) Option {
	return func(da *Disassembler) {
		da.progress = fn
	}
}

// New creates a disassembler over the default decoder.
func New(opts ...Option) *Disassembler {
	d := &Disassembler{
		logger:  zerolog.Nop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.decoder == nil {
		d.decoder = insts.NewDecoder(insts.WithLogger(d.logger))
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// Instruction decodes the instruction at address.
//
// It returns the instruction, the number of bytes consumed and an error.
// On success the size is the exact instruction size. On read, length and
// table failures the instruction is nil and the size is 2. For vector
// instructions that are recognized but not decoded, the marker instruction
// is returned with the full instruction size and an error matching
// insts.ErrUnimplemented.
func (d *Disassembler) Instruction(src memory.ByteSource, address uint64) (*insts.Instruction, int, error) {
	raw, err := reader.Read(src, address)
	if err != nil {
		d.logFailure(address, raw.Size, err)
		return nil, raw.Size, err
	}

	inst, err := d.decoder.Decode(raw.Value, raw.Length, address)
	if err != nil {
		size := 2
		var de *insts.DecodeError
		if errors.As(err, &de) && de.Size > 0 {
			size = de.Size
		}
		d.logFailure(address, size, err)
		return inst, size, err
	}

	return inst, raw.Size, nil
}

func (d *Disassembler) logFailure(address uint64, size int, err error) {
	d.logger.Debug().
		Uint64("addr", address).
		Int("size", size).
		Stringer("kind", insts.KindOf(err)).
		Err(err).
		Msg("decode failed")
}
