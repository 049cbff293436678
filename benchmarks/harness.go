package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/o3sim/timing/cache"
	"github.com/sarchlab/o3sim/timing/latency"
	"github.com/sarchlab/o3sim/timing/o3"
)

// Result holds the outcome of one workload at one machine width.
type Result struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload stresses
	Description string `json:"description"`

	// Width is the machine width the workload ran at
	Width int `json:"width"`

	// Cycles is the total simulated cycle count
	Cycles int `json:"cycles"`

	// Instructions is the number of retired instructions
	Instructions int `json:"instructions"`

	// IPC is retired instructions per cycle
	IPC float64 `json:"ipc"`

	// ROBStalls counts dispatch stalls on a full reorder buffer
	ROBStalls int `json:"rob_stalls"`

	// StationStalls counts dispatch stalls on busy reservation stations
	StationStalls int `json:"station_stalls"`

	// RegStalls counts dispatch stalls on an empty free list
	RegStalls int `json:"reg_stalls"`

	// QueueStalls counts stage advances rejected by full stage queues
	QueueStalls int `json:"queue_stalls"`

	// FetchHits/FetchMisses (if the fetch cache is enabled)
	FetchHits   uint64 `json:"fetch_hits,omitempty"`
	FetchMisses uint64 `json:"fetch_misses,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the sweep harness.
type HarnessConfig struct {
	// BaseConfig is the machine shape; Width is overridden per sweep point.
	BaseConfig o3.Config

	// Widths are the machine widths to sweep.
	Widths []int

	// IssuePolicy selects the issue-stage tie-break for every run.
	IssuePolicy o3.IssuePolicy

	// TimingConfig overrides the execution timing model when non-nil.
	TimingConfig *latency.TimingConfig

	// FetchCache enables the instruction-fetch cache model.
	FetchCache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables per-run progress output
	Verbose bool
}

// DefaultConfig returns the default sweep: the standard machine shape at
// widths 1 through 8.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		BaseConfig: o3.DefaultConfig(),
		Widths:     []int{1, 2, 4, 8},
		Output:     os.Stdout,
	}
}

// Harness sweeps workloads across machine widths and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a sweep harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if len(config.Widths) == 0 {
		config.Widths = []int{config.BaseConfig.Width}
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the sweep.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the sweep.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes every workload at every width and returns one result per
// combination, grouped by workload.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.workloads)*len(h.config.Widths))

	for _, w := range h.workloads {
		for _, width := range h.config.Widths {
			if h.config.Verbose {
				_, _ = fmt.Fprintf(h.config.Output,
					"running %s at width %d...\n", w.Name, width)
			}
			result, err := h.runWorkload(w, width)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// runWorkload executes a single workload at a single width.
func (h *Harness) runWorkload(w Workload, width int) (Result, error) {
	cfg := h.config.BaseConfig
	cfg.Width = width
	cfg.IssuePolicy = h.config.IssuePolicy

	var opts []o3.Option
	if h.config.TimingConfig != nil {
		opts = append(opts,
			o3.WithTimingTable(latency.NewTableWithConfig(h.config.TimingConfig)))
	}
	if h.config.FetchCache {
		opts = append(opts, o3.WithFetchCache(cache.DefaultFetchConfig()))
	}

	cpu, err := o3.New(cfg, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build core for %s: %w", w.Name, err)
	}
	if err := cpu.LoadProgram(w.Program); err != nil {
		return Result{}, fmt.Errorf("failed to load %s: %w", w.Name, err)
	}

	start := time.Now()
	if err := cpu.Run(); err != nil {
		return Result{}, fmt.Errorf("%s at width %d: %w", w.Name, width, err)
	}
	wallTime := time.Since(start)

	stats := cpu.Stats()
	result := Result{
		Name:          w.Name,
		Description:   w.Description,
		Width:         width,
		Cycles:        stats.Cycles,
		Instructions:  stats.Retired,
		IPC:           stats.IPC(),
		ROBStalls:     stats.ROBStalls,
		StationStalls: stats.StationStalls,
		RegStalls:     stats.RegStalls,
		QueueStalls:   stats.QueueStalls,
		WallTime:      wallTime,
	}

	if cpu.UseFetchCache() {
		cacheStats := cpu.FetchCacheStats()
		result.FetchHits = cacheStats.Hits
		result.FetchMisses = cacheStats.Misses
	}

	return result, nil
}

// PrintResults outputs sweep results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output, "=== O3Sim Width Sweep Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s (width %d)\n", r.Name, r.Width)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:         %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:   %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  IPC:            %.3f\n", r.IPC)
		_, _ = fmt.Fprintf(h.config.Output, "  ROB Stalls:     %d\n", r.ROBStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Station Stalls: %d\n", r.StationStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Reg Stalls:     %d\n", r.RegStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Queue Stalls:   %d\n", r.QueueStalls)

		if r.FetchHits > 0 || r.FetchMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Fetch Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.FetchHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.FetchMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs sweep results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,width,cycles,instructions,ipc,rob_stalls,station_stalls,reg_stalls,queue_stalls,fetch_hits,fetch_misses")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Width,
			r.Cycles,
			r.Instructions,
			r.IPC,
			r.ROBStalls,
			r.StationStalls,
			r.RegStalls,
			r.QueueStalls,
			r.FetchHits,
			r.FetchMisses,
		)
	}
}
