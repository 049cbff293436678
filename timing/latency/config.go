package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds execution latencies and reservation-station counts per
// operation kind.
type TimingConfig struct {
	// ALULatency is the execution latency for ALU operations.
	// Default: 1 cycle.
	ALULatency int `json:"alu_latency"`

	// LoadLatency is the execution latency for load operations.
	// Default: 2 cycles.
	LoadLatency int `json:"load_latency"`

	// StoreLatency is the execution latency for store operations.
	// Default: 2 cycles.
	StoreLatency int `json:"store_latency"`

	// ALUStations is the number of ALU reservation stations.
	// Default: 2.
	ALUStations int `json:"alu_stations"`

	// LoadStations is the number of load reservation stations.
	// Default: 1.
	LoadStations int `json:"load_stations"`

	// StoreStations is the number of store reservation stations.
	// Default: 1.
	StoreStations int `json:"store_stations"`
}

// DefaultTimingConfig returns a TimingConfig with the default execution
// resources: two single-cycle ALU stations and one two-cycle station each for
// loads and stores.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:    1,
		LoadLatency:   2,
		StoreLatency:  2,
		ALUStations:   2,
		LoadStations:  1,
		StoreStations: 1,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the latencies are positive and the station counts are
// not negative. A zero station count is legal: the scheduler treats the
// resulting permanent stall as a run-time watchdog abort, not a configuration
// error.
func (c *TimingConfig) Validate() error {
	if c.ALULatency <= 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.LoadLatency <= 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency <= 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.ALUStations < 0 {
		return fmt.Errorf("alu_stations must be >= 0")
	}
	if c.LoadStations < 0 {
		return fmt.Errorf("load_stations must be >= 0")
	}
	if c.StoreStations < 0 {
		return fmt.Errorf("store_stations must be >= 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		ALULatency:    c.ALULatency,
		LoadLatency:   c.LoadLatency,
		StoreLatency:  c.StoreLatency,
		ALUStations:   c.ALUStations,
		LoadStations:  c.LoadStations,
		StoreStations: c.StoreStations,
	}
}
