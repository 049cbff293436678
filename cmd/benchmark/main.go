// Command benchmark runs the O3Sim scheduling workloads across a sweep
// of machine widths and reports cycles, IPC, and dispatch stall counts
// for each combination.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv           Output results in CSV format (default: human-readable)
//	-widths        Comma-separated machine widths to sweep (default "1,2,4,8")
//	-core          Run only the core workload set (arithmetic, chain, mixed)
//	-icache        Enable the instruction fetch cache model
//	-oldest-first  Issue the oldest ready instruction first
//	-v             Print progress while running
//
// Example:
//
//	# Full sweep with human-readable output
//	go run ./cmd/benchmark
//
//	# CSV output for plotting
//	go run ./cmd/benchmark -csv > sweep.csv
//
//	# Quick check on the core set at widths 1 and 4
//	go run ./cmd/benchmark -core -widths 1,4
//
// Independent workloads should approach the machine width in IPC while
// serialized workloads stay near 1.0 regardless of width; the stall
// columns show which resource holds each workload back.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/o3sim/benchmarks"
	"github.com/sarchlab/o3sim/timing/o3"
)

func main() {
	csvOutput := flag.Bool("csv", false, "output results in CSV format")
	widthList := flag.String("widths", "1,2,4,8", "comma-separated machine widths to sweep")
	coreOnly := flag.Bool("core", false, "run only the core workload set")
	useICache := flag.Bool("icache", false, "enable the instruction fetch cache model")
	oldestFirst := flag.Bool("oldest-first", false, "issue the oldest ready instruction first")
	verbose := flag.Bool("v", false, "print progress while running")
	flag.Parse()

	widths, err := parseWidths(*widthList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing widths: %v\n", err)
		os.Exit(1)
	}

	config := benchmarks.DefaultConfig()
	config.Widths = widths
	config.FetchCache = *useICache
	config.Verbose = *verbose
	if *oldestFirst {
		config.IssuePolicy = o3.IssueOldestFirst
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	if !*csvOutput {
		fmt.Println("O3Sim Scheduling Benchmark")
		fmt.Printf("Widths: %v\n", widths)
		fmt.Printf("Issue policy: %s\n", config.IssuePolicy)
		if *useICache {
			fmt.Println("Fetch cache: enabled")
		}
		fmt.Println()
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if *csvOutput {
		harness.PrintCSV(results)
		return
	}

	harness.PrintResults(results)

	fmt.Println("=== Summary ===")
	fmt.Printf("Ran %d workload/width combinations\n", len(results))
	best := results[0]
	for _, r := range results[1:] {
		if r.IPC > best.IPC {
			best = r
		}
	}
	fmt.Printf("Best IPC: %.2f (%s at width %d)\n", best.IPC, best.Name, best.Width)
}

func parseWidths(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad width %q", p)
		}
		if w < 1 {
			return nil, fmt.Errorf("width must be at least 1, got %d", w)
		}
		widths = append(widths, w)
	}
	return widths, nil
}
