// Package main provides the vc4dis command, a VideoCore IV disassembler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/sarchlab/vc4dis/config"
	"github.com/sarchlab/vc4dis/disasm"
	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/listing"
	"github.com/sarchlab/vc4dis/loader"
	"github.com/sarchlab/vc4dis/memory"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage reports a command line problem; usage has already been printed.
var errUsage = errors.New("usage")

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, path, progress, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	in, err := open(cfg, path, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}
	defer func() { _ = in.Close() }()

	opts := []disasm.Option{
		disasm.WithDecoder(insts.NewDecoder(insts.WithLogger(logger))),
		disasm.WithLogger(logger),
		disasm.WithWorkers(cfg.Workers),
	}
	if progress {
		bar := newProgressBar(stderr, in.ranges)
		opts = append(opts, disasm.WithProgress(func(done, _ uint64) {
			_ = bar.Set64(int64(done))
		}))
		defer func() { _ = bar.Finish() }()
	}

	listings, err := disasm.New(opts...).SweepRanges(context.Background(), in.src, in.ranges)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if in.cache != nil {
		s := in.cache.Stats()
		logger.Debug().
			Uint64("reads", s.Reads).
			Uint64("hits", s.Hits).
			Uint64("misses", s.Misses).
			Uint64("bypasses", s.Bypasses).
			Msg("block cache")
	}

	enc, err := listing.NewEncoder(listing.Format(cfg.Format), listing.WithColor(cfg.Color))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := enc.Encode(stdout, listings); err != nil {
		fmt.Fprintf(stderr, "Error writing listing: %v\n", err)
		return 1
	}

	return 0
}

// parseArgs builds the run configuration. Flags given on the command line
// override the configuration file.
func parseArgs(args []string, stderr io.Writer) (*config.Config, string, bool, error) {
	fs := flag.NewFlagSet("vc4dis", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath = fs.String("config", "", "Path to a YAML or JSON configuration file")
		format     = fs.String("format", "text", "Listing format: text, yaml, cbor or dump")
		raw        = fs.Bool("raw", false, "Treat the input as a flat binary")
		base       = fs.Uint64("base", 0, "Load address of a raw binary")
		start      = fs.Uint64("start", 0, "First address to decode")
		end        = fs.Uint64("end", 0, "Address to stop decoding at (0 = end of input)")
		workers    = fs.Int("workers", 1, "Number of ranges decoded in parallel")
		color      = fs.Bool("color", false, "Colorize the text listing")
		progress   = fs.Bool("progress", false, "Show a progress bar")
		verbose    = fs.Bool("v", false, "Verbose output")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vc4dis [options] <file>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, "", false, errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", false, errUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, "", false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "raw":
			cfg.Raw = *raw
		case "base":
			cfg.BaseAddress = *base
		case "start":
			cfg.Start = *start
		case "end":
			cfg.End = *end
		case "workers":
			cfg.Workers = *workers
		case "color":
			cfg.Color = *color
		case "v":
			if *verbose {
				cfg.LogLevel = zerolog.DebugLevel.String()
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, "", false, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, fs.Arg(0), *progress, nil
}

// input is an opened program image.
type input struct {
	src    memory.ByteSource
	ranges []disasm.Range
	cache  *memory.Cache
	closer io.Closer
}

func (in *input) Close() error {
	if in.closer == nil {
		return nil
	}
	return in.closer.Close()
}

func open(cfg *config.Config, path string, logger zerolog.Logger) (*input, error) {
	if cfg.Raw {
		return openRaw(cfg, path, logger)
	}
	return openELF(cfg, path, logger)
}

func openRaw(cfg *config.Config, path string, logger zerolog.Logger) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open binary: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat binary: %w", err)
	}

	size := uint64(info.Size())
	in := &input{
		src:    memory.NewReaderAt(f, cfg.BaseAddress, size),
		closer: f,
	}
	if cacheCfg, ok := cfg.Cache(); ok {
		in.cache = memory.NewCache(cacheCfg, in.src)
		in.src = in.cache
	}

	r := disasm.Range{Start: cfg.BaseAddress, End: cfg.BaseAddress + size}
	if cfg.Start != 0 {
		r.Start = cfg.Start
	}
	if cfg.End != 0 {
		r.End = cfg.End
	}
	in.ranges = []disasm.Range{r}

	logger.Info().
		Str("path", path).
		Uint64("base", cfg.BaseAddress).
		Uint64("size", size).
		Msg("loaded raw binary")

	return in, nil
}

func openELF(cfg *config.Config, path string, logger zerolog.Logger) (*input, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	src, err := prog.Source()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Str("machine", prog.Machine.String()).
		Uint64("entry", prog.EntryPoint).
		Int("segments", len(prog.Segments)).
		Msg("loaded ELF program")

	in := &input{src: src}
	if cfg.Start == 0 && cfg.End == 0 {
		in.ranges = prog.CodeRanges()
		return in, nil
	}

	r := disasm.Range{Start: cfg.Start, End: cfg.End}
	if r.End == 0 {
		for _, s := range src.Regions() {
			r.End = max(r.End, s.End())
		}
	}
	in.ranges = []disasm.Range{r}
	return in, nil
}

func newProgressBar(w io.Writer, ranges []disasm.Range) *progressbar.ProgressBar {
	var total uint64
	for _, r := range ranges {
		total += r.Len()
	}
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("decoding"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}
