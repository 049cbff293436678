// Package latency provides the execution-resource timing model for the
// out-of-order core: per-kind execution latencies and the reservation-station
// counts, configurable via TimingConfig.
package latency

import (
	"github.com/sarchlab/o3sim/insts"
)

// Table provides latency and station-count lookups by operation kind.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with a custom timing
// configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Latency returns the execution latency in cycles for an operation kind.
func (t *Table) Latency(kind insts.Kind) int {
	switch kind {
	case insts.ALU:
		return t.config.ALULatency
	case insts.Load:
		return t.config.LoadLatency
	case insts.Store:
		return t.config.StoreLatency
	default:
		return 1
	}
}

// Stations returns the number of reservation stations for an operation kind.
// Zero is a legal value; a program needing that kind will stall until the
// scheduler's forward-progress watchdog aborts the run.
func (t *Table) Stations(kind insts.Kind) int {
	switch kind {
	case insts.ALU:
		return t.config.ALUStations
	case insts.Load:
		return t.config.LoadStations
	case insts.Store:
		return t.config.StoreStations
	default:
		return 0
	}
}

// TotalStations returns the size of the reservation-station set.
func (t *Table) TotalStations() int {
	total := 0
	for k := insts.Kind(0); k < insts.NumKinds; k++ {
		total += t.Stations(k)
	}
	return total
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
