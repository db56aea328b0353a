// Package loader reads VideoCore ELF images and exposes their loadable
// segments as a byte source for disassembly.
package loader

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/vc4dis/disasm"
	"github.com/sarchlab/vc4dis/memory"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

func (f SegmentFlags) String() string {
	out := []byte("---")
	if f&SegmentFlagRead != 0 {
		out[0] = 'r'
	}
	if f&SegmentFlagWrite != 0 {
		out[1] = 'w'
	}
	if f&SegmentFlagExecute != 0 {
		out[2] = 'x'
	}
	return string(out)
}

// machines lists the ELF machine types carrying VideoCore code.
var machines = map[elf.Machine]bool{
	elf.EM_VIDEOCORE:  true,
	elf.EM_VIDEOCORE3: true,
	elf.EM_VIDEOCORE5: true,
}

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address the segment is mapped at.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Executable reports whether the segment holds code.
func (s Segment) Executable() bool {
	return s.Flags&SegmentFlagExecute != 0
}

// Program represents the loadable image of a VideoCore ELF file.
type Program struct {
	// EntryPoint is the address where execution begins.
	EntryPoint uint64
	// Machine is the ELF machine type.
	Machine elf.Machine
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// Load parses a VideoCore ELF file at path.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return load(f)
}

// LoadReader parses a VideoCore ELF image from r.
func LoadReader(r io.ReaderAt) (*Program, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return load(f)
}

func load(f *elf.File) (*Program, error) {
	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}
	if !machines[f.Machine] {
		return nil, fmt.Errorf("not a VideoCore ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: f.Entry,
		Machine:    f.Machine,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}

// Source maps the file contents of every segment at its virtual address.
// BSS tails are not mapped.
func (p *Program) Source() (*memory.Segments, error) {
	segs := make([]memory.Segment, 0, len(p.Segments))
	for _, s := range p.Segments {
		segs = append(segs, memory.Segment{Addr: s.VirtAddr, Data: s.Data})
	}
	src, err := memory.NewSegments(segs...)
	if err != nil {
		return nil, fmt.Errorf("failed to map segments: %w", err)
	}
	return src, nil
}

// CodeRanges returns the file-backed extent of each executable segment.
func (p *Program) CodeRanges() []disasm.Range {
	var ranges []disasm.Range
	for _, s := range p.Segments {
		if !s.Executable() || len(s.Data) == 0 {
			continue
		}
		ranges = append(ranges, disasm.Range{
			Start: s.VirtAddr,
			End:   s.VirtAddr + uint64(len(s.Data)),
		})
	}
	return ranges
}
