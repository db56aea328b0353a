// Package main provides a profiling wrapper for vc4dis to identify decoder
// bottlenecks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/vc4dis/disasm"
	"github.com/sarchlab/vc4dis/loader"
	"github.com/sarchlab/vc4dis/memory"
)

var (
	raw        = flag.Bool("raw", false, "Treat the input as a flat binary loaded at address 0")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	repeat     = flag.Int("repeat", 100, "number of sweeps over the input")
	workers    = flag.Int("workers", 1, "number of ranges decoded in parallel")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	path := flag.Arg(0)
	src, ranges, err := load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Printf("Loaded: %s\n", path)
	fmt.Printf("Ranges: %d\n", len(ranges))

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	d := disasm.New(disasm.WithWorkers(*workers))
	start := time.Now()

	var lines, bytes uint64
	sweeps := 0
	for ; sweeps < *repeat; sweeps++ {
		listings, err := d.SweepRanges(ctx, src, ranges)
		if err != nil {
			fmt.Printf("\nStopped after %d sweeps: %v\n", sweeps, err)
			break
		}
		for _, l := range listings {
			lines += uint64(len(l.Lines))
			bytes += l.Range.Len()
		}
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Sweeps: %d\n", sweeps)
	fmt.Printf("Instructions decoded: %d\n", lines)
	fmt.Printf("Bytes swept: %d\n", bytes)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if lines > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(lines)/elapsed.Seconds())
	}
}

// load reads the whole input into memory so that file I/O stays out of the
// profile.
func load(path string) (memory.ByteSource, []disasm.Range, error) {
	if *raw {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		src := memory.NewBytes(0, data)
		return src, []disasm.Range{{Start: src.Base(), End: src.End()}}, nil
	}

	prog, err := loader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := prog.Source()
	if err != nil {
		return nil, nil, err
	}
	return src, prog.CodeRanges(), nil
}
