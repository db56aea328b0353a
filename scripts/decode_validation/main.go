// Validate decoder throughput - measures time and allocations per decode
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/vc4dis/insts"
	"github.com/sarchlab/vc4dis/memory"
	"github.com/sarchlab/vc4dis/reader"
)

func main() {
	// One instruction of every length class, little-endian halfwords
	image := []byte{
		// add r1, r2
		0x21, 0x42,
		// add r1, r2, r3, al
		0x41, 0xC0, 0x03, 0x17,
		// lea r5, $+0x1000
		0x05, 0xE5, 0x00, 0x10, 0x00, 0x00,
		// vld
		0x00, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	src := memory.NewBytes(0x1000, image)
	decoder := insts.NewDecoder()

	decodeAll := func() int {
		n := 0
		for addr := src.Base(); addr < src.End(); {
			raw, err := reader.Read(src, addr)
			if err != nil {
				addr += uint64(raw.Size)
				continue
			}
			_, _ = decoder.Decode(raw.Value, raw.Length, addr)
			addr += uint64(raw.Size)
			n++
		}
		return n
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decodeAll()
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	totalDecodes := 0
	for i := 0; i < iterations; i++ {
		totalDecodes += decodeAll()
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decode Validation Results:\n")
	fmt.Printf("==========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	// Each decode returns a fresh instruction and its operand slice.
	if float64(allocations)/float64(totalDecodes) <= 2.5 {
		fmt.Printf("\nGOOD: allocation rate within the instruction and operand budget\n")
	} else {
		fmt.Printf("\nWARNING: high allocation rate detected\n")
	}
}
