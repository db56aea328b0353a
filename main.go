// Package main provides the entry point for vc4dis.
// vc4dis is a VideoCore IV instruction decoder and disassembler.
//
// For the full CLI, use: go run ./cmd/vc4dis
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("vc4dis - VideoCore IV Disassembler")
	fmt.Println("")
	fmt.Println("Usage: vc4dis [options] <file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to a YAML or JSON configuration file")
	fmt.Println("  -format    Listing format: text, yaml, cbor or dump")
	fmt.Println("  -raw       Treat the input as a flat binary")
	fmt.Println("  -base      Load address of a raw binary")
	fmt.Println("  -start     First address to decode")
	fmt.Println("  -end       Address to stop decoding at")
	fmt.Println("  -workers   Number of ranges decoded in parallel")
	fmt.Println("  -color     Colorize the text listing")
	fmt.Println("  -progress  Show a progress bar")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/vc4dis' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/vc4dis' instead.")
	}
}
