// Package o3 implements a cycle-accurate out-of-order superscalar core in
// the style of Tomasulo scheduling with explicit register renaming.
//
// Instructions flow through seven stages: fetch, decode, and dispatch in
// program order; issue, execute, and complete out of order through typed
// reservation stations; retire in program order through a reorder buffer.
// The core schedules identifiers only and never computes data values.
//
// Usage:
//
//	cpu, err := o3.New(o3.DefaultConfig())
//	if err != nil { ... }
//	if err := cpu.LoadProgram(ops); err != nil { ... }
//	if err := cpu.Run(); err != nil { ... }
//	cpu.WriteReport(os.Stdout)
package o3

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/cache"
	"github.com/sarchlab/o3sim/timing/latency"
	"github.com/sarchlab/o3sim/timing/rename"
)

// ErrNoProgress reports a cycle in which no instruction advanced through any
// stage while instructions were still in flight. This is the scheduler's
// forward-progress watchdog firing; the condition is terminal.
var ErrNoProgress = errors.New("no instruction advanced")

// instBytes is the architectural instruction size used to address the
// optional fetch cache.
const instBytes = 4

// IssuePolicy selects how the issue stage breaks ties among ready stations.
type IssuePolicy int

const (
	// IssueStationOrder scans stations in index order. This reproduces the
	// legacy scheduling exactly and is the default.
	IssueStationOrder IssuePolicy = iota

	// IssueOldestFirst issues ready instructions oldest first. This is the
	// architecturally faithful policy; reports produced under it can differ
	// from the legacy ones when same-cycle candidates compete.
	IssueOldestFirst
)

// String returns the policy name used by configuration and flags.
func (p IssuePolicy) String() string {
	switch p {
	case IssueOldestFirst:
		return "oldest-first"
	default:
		return "station-order"
	}
}

// Config describes the machine shape of the core.
type Config struct {
	// ArchRegs is the number of architectural registers.
	ArchRegs int `json:"arch_regs"`

	// PhysRegs is the number of physical registers. Must exceed ArchRegs;
	// the surplus forms the initial free list.
	PhysRegs int `json:"phys_regs"`

	// ROBEntries is the reorder-buffer capacity.
	ROBEntries int `json:"rob_entries"`

	// Width is the superscalar width: the per-cycle instruction bound for
	// every stage and the stage-queue capacity.
	Width int `json:"width"`

	// LSQEntries sizes the load/store queue. It is carried in the
	// configuration but not consulted by the scheduling logic.
	LSQEntries int `json:"lsq_entries"`

	// IssuePolicy selects the issue-stage tie-break.
	IssuePolicy IssuePolicy `json:"issue_policy"`
}

// DefaultConfig returns the default machine shape: a 4-wide core with 32
// architectural registers renamed onto 64 physical registers and a 32-entry
// reorder buffer.
func DefaultConfig() Config {
	return Config{
		ArchRegs:   32,
		PhysRegs:   64,
		ROBEntries: 32,
		Width:      4,
		LSQEntries: 16,
	}
}

// Validate checks the machine shape. Resource exhaustion at run time is a
// stall, never a validation concern; this only rejects shapes that cannot
// describe a machine.
func (c Config) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("width must be >= 1")
	}
	if c.ArchRegs < 1 {
		return fmt.Errorf("arch regs must be >= 1")
	}
	if c.PhysRegs <= c.ArchRegs {
		return fmt.Errorf("phys regs must be > arch regs")
	}
	if c.ROBEntries < 1 {
		return fmt.Errorf("rob entries must be >= 1")
	}
	if c.LSQEntries < 0 {
		return fmt.Errorf("lsq entries must be >= 0")
	}
	return nil
}

// Statistics holds the counters accumulated over a run.
type Statistics struct {
	Cycles     int `json:"cycles"`
	Fetched    int `json:"fetched"`
	Decoded    int `json:"decoded"`
	Dispatched int `json:"dispatched"`
	Issued     int `json:"issued"`
	Executed   int `json:"executed"`
	Completed  int `json:"completed"`
	Retired    int `json:"retired"`

	// ROBStalls counts cycles dispatch stopped on a full reorder buffer.
	ROBStalls int `json:"rob_stalls"`
	// StationStalls counts cycles dispatch stopped with no free station of
	// the required kind.
	StationStalls int `json:"station_stalls"`
	// RegStalls counts cycles dispatch stopped on an empty free list.
	RegStalls int `json:"reg_stalls"`
	// QueueStalls counts stage advances rejected by a full stage queue.
	QueueStalls int `json:"queue_stalls"`
}

// IPC returns retired instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Retired) / float64(s.Cycles)
}

// wakeupListener consumes physical-register readiness broadcasts from the
// complete stage.
type wakeupListener interface {
	WakeUp(reg int)
}

// mapTableListener forwards broadcasts to the speculative map table.
type mapTableListener struct {
	table *rename.MapTable
}

func (l mapTableListener) WakeUp(reg int) {
	l.table.MarkReady(reg)
}

// Option configures a CPU beyond its machine shape.
type Option func(*CPU)

// WithTimingTable replaces the default execution-resource timing model.
func WithTimingTable(table *latency.Table) Option {
	return func(c *CPU) {
		c.latencies = table
	}
}

// WithTraceLogger installs a logger for the per-cycle diagnostic trace.
// Stage advances are emitted at debug level; the trace is observational and
// feeds nothing inside the scheduler.
func WithTraceLogger(logger zerolog.Logger) Option {
	return func(c *CPU) {
		c.tracer = logger
	}
}

// WithFetchCache enables the instruction-fetch cache model. Misses stall the
// fetch stage, so enabling it changes timing; the default core fetches
// without one.
func WithFetchCache(config cache.Config) Option {
	return func(c *CPU) {
		c.fetchCache = cache.New(config)
	}
}

// CPU is the out-of-order core scheduler. It owns every piece of shared
// state — the program list, stage queues, stations, reorder buffer, map
// tables, and free list — and mutates them only inside the stage procedures,
// one stage at a time within a cycle.
type CPU struct {
	config    Config
	latencies *latency.Table

	program  []*Instruction
	fetchPtr int
	fetching bool

	decodeQueue   *stageQueue
	dispatchQueue *stageQueue
	executeQueue  *stageQueue
	completeQueue *stageQueue

	stations  []*ReservationStation
	rob       *ReorderBuffer
	mapTable  *rename.MapTable
	archTable *rename.MapTable
	freeList  *rename.FreeList

	// pendingFree holds registers released by retirement this cycle; they
	// join the free list at the start of the next cycle.
	pendingFree []int

	listeners []wakeupListener

	fetchCache *cache.Cache
	fetchDelay int
	fetchPaid  bool

	cycle    int
	progress bool
	stats    Statistics
	tracer   zerolog.Logger
}

// New creates a core with the given machine shape.
func New(config Config, opts ...Option) (*CPU, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid core config: %w", err)
	}

	c := &CPU{
		config:    config,
		latencies: latency.NewTable(),
		tracer:    zerolog.Nop(),
		fetching:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.latencies.Config().Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	c.decodeQueue = newStageQueue("decode queue", config.Width)
	c.dispatchQueue = newStageQueue("dispatch queue", config.Width)
	c.executeQueue = newStageQueue("execute queue", config.Width)
	c.completeQueue = newStageQueue("complete queue", config.Width)

	c.buildStations()

	c.rob = NewReorderBuffer(config.ROBEntries)
	c.mapTable = rename.NewMapTable("map table", config.ArchRegs, config.PhysRegs)
	c.archTable = rename.NewMapTable("arch map table", config.ArchRegs, config.PhysRegs)
	c.freeList = rename.NewFreeList(config.ArchRegs, config.PhysRegs)

	c.listeners = make([]wakeupListener, 0, len(c.stations)+1)
	for _, st := range c.stations {
		c.listeners = append(c.listeners, st)
	}
	c.listeners = append(c.listeners, mapTableListener{table: c.mapTable})

	return c, nil
}

// buildStations lays out the station set kind by kind, so station indices
// group ALU stations first, then loads, then stores.
func (c *CPU) buildStations() {
	for k := insts.Kind(0); k < insts.NumKinds; k++ {
		count := c.latencies.Stations(k)
		lat := c.latencies.Latency(k)
		for i := 0; i < count; i++ {
			name := fmt.Sprintf("%s%d", k, i)
			c.stations = append(c.stations, newStation(name, k, lat))
		}
	}
}

// LoadProgram installs the program: one dynamic instruction per operation,
// in order. It must be called before the first cycle.
func (c *CPU) LoadProgram(ops []insts.Operation) error {
	if c.cycle > 0 {
		return fmt.Errorf("program cannot be loaded after simulation has started")
	}

	program := make([]*Instruction, 0, len(ops))
	for seq, op := range ops {
		if err := op.Validate(c.config.ArchRegs); err != nil {
			return fmt.Errorf("instruction %d: %w", seq, err)
		}
		program = append(program, newInstruction(seq, op))
	}

	c.program = program
	c.fetchPtr = 0
	c.fetching = true
	return nil
}

// Tick advances the machine one cycle and reports whether any instruction
// made forward progress. Stages evaluate in reverse pipeline order so that
// capacity freed by a later stage is visible to earlier stages within the
// same cycle; the free list is the deliberate exception — registers released
// by retirement become allocatable only at the start of the next cycle.
func (c *CPU) Tick() bool {
	c.progress = false

	for _, num := range c.pendingFree {
		c.freeList.Push(num)
	}
	c.pendingFree = c.pendingFree[:0]

	c.retire()
	c.complete()
	c.execute()
	c.issue()
	c.dispatch()
	c.decode()
	c.fetch()

	c.cycle++
	c.stats.Cycles = c.cycle
	return c.progress
}

// Run ticks until every instruction has retired. A cycle with instructions
// in flight but no forward progress is a terminal abort: the machine cannot
// recover from it, so Run stops and returns ErrNoProgress wrapped with the
// stalled cycle. StateDump describes the stuck machine.
func (c *CPU) Run() error {
	for !c.Done() {
		cycle := c.cycle
		if c.Tick() {
			continue
		}
		c.tracer.Error().
			Int("cycle", cycle).
			Msg("pipeline stalled with instructions in flight")
		return fmt.Errorf("deadlock at cycle %d: %w", cycle, ErrNoProgress)
	}
	return nil
}

// Done reports whether every program instruction has retired.
func (c *CPU) Done() bool {
	return c.stats.Retired == len(c.program)
}

// Cycle returns the number of cycles simulated so far.
func (c *CPU) Cycle() int {
	return c.cycle
}

// Stats returns a copy of the run statistics.
func (c *CPU) Stats() Statistics {
	return c.stats
}

// Config returns the machine shape.
func (c *CPU) Config() Config {
	return c.config
}

// Instructions returns the program's dynamic instructions in program order.
func (c *CPU) Instructions() []*Instruction {
	program := make([]*Instruction, len(c.program))
	copy(program, c.program)
	return program
}

// Stations returns the reservation-station set in index order.
func (c *CPU) Stations() []*ReservationStation {
	stations := make([]*ReservationStation, len(c.stations))
	copy(stations, c.stations)
	return stations
}

// ROB returns the reorder buffer.
func (c *CPU) ROB() *ReorderBuffer {
	return c.rob
}

// MapTable returns the speculative map table.
func (c *CPU) MapTable() *rename.MapTable {
	return c.mapTable
}

// ArchMapTable returns the architectural (committed) map table.
func (c *CPU) ArchMapTable() *rename.MapTable {
	return c.archTable
}

// FreeRegCount returns the number of allocatable physical registers.
func (c *CPU) FreeRegCount() int {
	return c.freeList.Len()
}

// PendingRelease returns the number of registers awaiting free-list
// admission at the start of the next cycle.
func (c *CPU) PendingRelease() int {
	return len(c.pendingFree)
}

// UseFetchCache reports whether the fetch-cache model is enabled.
func (c *CPU) UseFetchCache() bool {
	return c.fetchCache != nil
}

// FetchCacheStats returns the fetch-cache statistics; zero when the model is
// disabled.
func (c *CPU) FetchCacheStats() cache.Statistics {
	if c.fetchCache == nil {
		return cache.Statistics{}
	}
	return c.fetchCache.Stats()
}

// StateDump renders the scheduler state for stall diagnosis.
func (c *CPU) StateDump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle %d, %d/%d retired\n", c.cycle, c.stats.Retired, len(c.program))
	fmt.Fprintf(&b, "%s\n", c.rob)
	for _, st := range c.stations {
		fmt.Fprintf(&b, "%s\n", st)
	}
	fmt.Fprintf(&b, "%s\n", c.mapTable)
	fmt.Fprintf(&b, "%s\n", c.archTable)
	fmt.Fprintf(&b, "%s\n", c.freeList)
	fmt.Fprintf(&b, "%s\n", c.decodeQueue)
	fmt.Fprintf(&b, "%s\n", c.dispatchQueue)
	fmt.Fprintf(&b, "%s\n", c.executeQueue)
	fmt.Fprintf(&b, "%s", c.completeQueue)
	return b.String()
}

// broadcast publishes a physical register's readiness to every listener:
// all reservation stations and the speculative map table.
func (c *CPU) broadcast(reg int) {
	for _, l := range c.listeners {
		l.WakeUp(reg)
	}
}

func (c *CPU) trace(stage string, inst *Instruction) {
	c.tracer.Debug().
		Int("cycle", c.cycle).
		Str("stage", stage).
		Stringer("inst", inst).
		Msg("advance")
}
