// Command profile runs a large workload through the out-of-order core
// under the Go profiler to identify simulation bottlenecks.
//
// Usage:
//
//	go run ./cmd/profile -cpuprofile cpu.prof
//	go tool pprof cpu.prof
//
// Flags:
//
//	-cpuprofile  Write a CPU profile to the given file
//	-memprofile  Write a heap profile to the given file
//	-n           Number of synthetic instructions to run (default 1000000)
//	-width       Machine width (default 4)
//	-timeout     Abort if the run exceeds this duration (default 60s)
//
// A program file may be given as a positional argument instead of the
// synthetic workload:
//
//	go run ./cmd/profile -cpuprofile cpu.prof testdata/chain.txt
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/loader"
	"github.com/sarchlab/o3sim/timing/o3"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile = flag.String("memprofile", "", "write heap profile to file")
	numInsts   = flag.Int("n", 1000000, "number of synthetic instructions to run")
	width      = flag.Int("width", 4, "machine width")
	timeout    = flag.Duration("timeout", 60*time.Second, "abort if the run exceeds this duration")
)

func main() {
	flag.Parse()

	program, name, err := buildProgram()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	// Abort runs that never terminate.
	go func() {
		time.Sleep(*timeout)
		fmt.Fprintf(os.Stderr, "Timeout after %v, aborting\n", *timeout)
		os.Exit(2)
	}()

	config := o3.DefaultConfig()
	config.Width = *width
	cpu, err := o3.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building core: %v\n", err)
		os.Exit(1)
	}
	if err := cpu.LoadProgram(program); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Profiling %s (%d instructions, width %d)\n", name, len(program), *width)

	start := time.Now()
	runErr := cpu.Run()
	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating heap profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing heap profile: %v\n", err)
			os.Exit(1)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}

	stats := cpu.Stats()
	fmt.Println("\nProfiling Results:")
	fmt.Printf("  Instructions retired: %d\n", stats.Retired)
	fmt.Printf("  Simulated cycles:     %d\n", stats.Cycles)
	fmt.Printf("  IPC:                  %.2f\n", stats.IPC())
	fmt.Printf("  Wall time:            %v\n", elapsed)
	fmt.Printf("  Instructions/second:  %.0f\n", float64(stats.Retired)/elapsed.Seconds())
	fmt.Printf("  Cycles/second:        %.0f\n", float64(stats.Cycles)/elapsed.Seconds())
}

// buildProgram returns the positional program file when one is given,
// and a synthetic mix of ALU, load, and store operations otherwise.
func buildProgram() ([]insts.Operation, string, error) {
	if flag.NArg() >= 1 {
		path := flag.Arg(0)
		program, err := loader.Load(path)
		if err != nil {
			return nil, "", err
		}
		return program, path, nil
	}

	program := make([]insts.Operation, 0, *numInsts)
	for i := 0; i < *numInsts; i++ {
		dst := 1 + i%30
		src1 := (i + 7) % 31
		src2 := (i + 13) % 31
		switch i % 4 {
		case 0, 1:
			program = append(program, insts.ALUOp(dst, src1, src2))
		case 2:
			program = append(program, insts.LoadOp(dst, src1))
		default:
			program = append(program, insts.StoreOp(src1, src2))
		}
	}
	return program, "synthetic mix", nil
}
