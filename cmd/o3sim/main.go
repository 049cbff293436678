// Package main provides the entry point for O3Sim.
// O3Sim is a cycle-accurate out-of-order superscalar CPU simulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/loader"
	"github.com/sarchlab/o3sim/results"
	"github.com/sarchlab/o3sim/timing/cache"
	"github.com/sarchlab/o3sim/timing/latency"
	"github.com/sarchlab/o3sim/timing/o3"
)

var defaults = o3.DefaultConfig()

var (
	configPath  = flag.String("config", "", "Path to timing configuration JSON file")
	archRegs    = flag.Int("archregs", defaults.ArchRegs, "Number of architectural registers")
	physRegs    = flag.Int("physregs", defaults.PhysRegs, "Number of physical registers")
	robEntries  = flag.Int("rob", defaults.ROBEntries, "Reorder buffer entries")
	width       = flag.Int("width", defaults.Width, "Machine width (instructions per stage per cycle)")
	lsqEntries  = flag.Int("lsq", defaults.LSQEntries, "Load/store queue entries")
	oldestFirst = flag.Bool("oldest-first", false, "Issue oldest ready instructions first")
	reportPath  = flag.String("o", "", "Write the timing report to this file (default: stdout)")
	goldenPath  = flag.String("golden", "", "Compare the timing report against a golden file")
	resultsDir  = flag.String("results", "", "Archive the run in a results store at this directory")
	useICache   = flag.Bool("icache", false, "Enable the instruction fetch cache model")
	trace       = flag.Bool("trace", false, "Emit a per-cycle scheduling trace to stderr")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: o3sim [options] <program.txt>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	ops, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", len(ops))
	}

	cpu, err := buildCore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building core: %v\n", err)
		os.Exit(1)
	}

	if err := cpu.LoadProgram(ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if err := cpu.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", cpu.StateDump())
		os.Exit(1)
	}

	// The timing report is the product of the run; failing to write it
	// makes the run worthless.
	if *reportPath != "" {
		if err := cpu.SaveReport(*reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	} else if err := cpu.WriteReport(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	if *goldenPath != "" {
		if err := checkGolden(cpu, *goldenPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Report matches %s\n", *goldenPath)
		}
	}

	if *resultsDir != "" {
		if err := archiveRun(programPath, ops, cpu); err != nil {
			fmt.Fprintf(os.Stderr, "Error archiving run: %v\n", err)
			os.Exit(1)
		}
	}

	if *verbose {
		printSummary(cpu)
	}
}

// buildCore assembles the machine described by the command-line flags.
func buildCore() (*o3.CPU, error) {
	cfg := o3.Config{
		ArchRegs:   *archRegs,
		PhysRegs:   *physRegs,
		ROBEntries: *robEntries,
		Width:      *width,
		LSQEntries: *lsqEntries,
	}
	if *oldestFirst {
		cfg.IssuePolicy = o3.IssueOldestFirst
	}

	var opts []o3.Option

	if *configPath != "" {
		timingConfig, err := latency.LoadConfig(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load timing config: %w", err)
		}
		opts = append(opts, o3.WithTimingTable(latency.NewTableWithConfig(timingConfig)))
	}

	if *useICache {
		opts = append(opts, o3.WithFetchCache(cache.DefaultFetchConfig()))
	}

	if *trace {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
			Level(zerolog.DebugLevel)
		opts = append(opts, o3.WithTraceLogger(logger))
	}

	return o3.New(cfg, opts...)
}

// checkGolden compares the produced report against a golden file and
// returns an error carrying a unified diff on mismatch.
func checkGolden(cpu *o3.CPU, goldenPath string) error {
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		return fmt.Errorf("failed to read golden report: %w", err)
	}

	var sb strings.Builder
	if err := cpu.WriteReport(&sb); err != nil {
		return err
	}
	if sb.String() == string(golden) {
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(golden)),
		B:        difflib.SplitLines(sb.String()),
		FromFile: goldenPath,
		ToFile:   "report",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to diff reports: %w", err)
	}
	return fmt.Errorf("report differs from %s:\n%s", goldenPath, diff)
}

// archiveRun stores the run record in the results store.
func archiveRun(programPath string, ops []insts.Operation, cpu *o3.CPU) error {
	store, err := results.Open(*resultsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Put(results.NewRecord(filepath.Base(programPath), ops, cpu))
}

// printSummary reports run statistics on stdout.
func printSummary(cpu *o3.CPU) {
	stats := cpu.Stats()
	fmt.Printf("\n")
	fmt.Printf("Total Instructions: %d\n", stats.Retired)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("IPC: %.2f\n", stats.IPC())
	fmt.Printf("\n")
	fmt.Printf("Dispatch Stalls:\n")
	fmt.Printf("  ROB full:      %d\n", stats.ROBStalls)
	fmt.Printf("  Stations busy: %d\n", stats.StationStalls)
	fmt.Printf("  No free regs:  %d\n", stats.RegStalls)
	fmt.Printf("  Queues full:   %d\n", stats.QueueStalls)

	if cpu.UseFetchCache() {
		cacheStats := cpu.FetchCacheStats()
		fmt.Printf("\n")
		fmt.Printf("Fetch Cache:\n")
		fmt.Printf("  Hits:     %d\n", cacheStats.Hits)
		fmt.Printf("  Misses:   %d\n", cacheStats.Misses)
		fmt.Printf("  Hit rate: %.1f%%\n", cacheStats.HitRate()*100)
	}
}
