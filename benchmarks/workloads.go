// Package benchmarks provides synthetic workloads and a sweep harness for
// characterizing the out-of-order core across machine widths.
package benchmarks

import "github.com/sarchlab/o3sim/insts"

// Workload is a named instruction sequence targeting one scheduling
// behavior.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload stresses
	Description string

	// Program is the instruction sequence to run
	Program []insts.Operation
}

// GetWorkloads returns the standard workload set. Each workload targets a
// specific scheduler characteristic.
func GetWorkloads() []Workload {
	return []Workload{
		arithmeticIndependent(),
		dependencyChain(),
		loadChain(),
		storeStream(),
		mixedOperations(),
		renamePressure(),
		fanOut(),
	}
}

// GetCoreWorkloads returns a minimal set for quick validation: peak
// throughput, full serialization, and a realistic blend.
func GetCoreWorkloads() []Workload {
	return []Workload{
		arithmeticIndependent(),
		dependencyChain(),
		mixedOperations(),
	}
}

// 1. Independent arithmetic - measures issue throughput. Sources r25-r31
// are never written, so every instruction is ready at dispatch and IPC
// should approach the machine width.
func arithmeticIndependent() Workload {
	ops := make([]insts.Operation, 0, 96)
	for i := 0; i < 96; i++ {
		ops = append(ops, insts.ALUOp(1+i%24, 25+i%7, 25+(i+3)%7))
	}
	return Workload{
		Name:        "arithmetic_independent",
		Description: "96 independent ALU operations - measures issue throughput",
		Program:     ops,
	}
}

// 2. Dependency chain - fully serialized ALU work. Every instruction reads
// the register the previous one wrote, so IPC is bounded near 1/3 by the
// issue-execute-complete round trip regardless of width.
func dependencyChain() Workload {
	ops := make([]insts.Operation, 0, 64)
	for i := 0; i < 64; i++ {
		ops = append(ops, insts.ALUOp(1, 1, 2))
	}
	return Workload{
		Name:        "dependency_chain",
		Description: "64 chained ALU operations - measures wakeup round-trip latency",
		Program:     ops,
	}
}

// 3. Load chain - pointer-chase pattern through the single load station,
// adding the load latency to every link.
func loadChain() Workload {
	ops := make([]insts.Operation, 0, 32)
	for i := 0; i < 32; i++ {
		ops = append(ops, insts.LoadOp(1, 1))
	}
	return Workload{
		Name:        "load_chain",
		Description: "32 chained loads - measures load latency exposure",
		Program:     ops,
	}
}

// 4. Store stream - independent stores contending for the single store
// station; throughput is bounded by station turnaround, not width.
func storeStream() Workload {
	ops := make([]insts.Operation, 0, 48)
	for i := 0; i < 48; i++ {
		ops = append(ops, insts.StoreOp(1+i%8, 9+i%8))
	}
	return Workload{
		Name:        "store_stream",
		Description: "48 independent stores - measures store station contention",
		Program:     ops,
	}
}

// 5. Mixed operations - a realistic blend of ALU, load, and store work with
// short dependency distances.
func mixedOperations() Workload {
	ops := make([]insts.Operation, 0, 96)
	for i := 0; i < 96; i++ {
		dst := 1 + i%16
		src1 := (i + 5) % 24
		src2 := (i + 11) % 24
		switch i % 4 {
		case 0, 1:
			ops = append(ops, insts.ALUOp(dst, src1, src2))
		case 2:
			ops = append(ops, insts.LoadOp(dst, src1))
		default:
			ops = append(ops, insts.StoreOp(src1, src2))
		}
	}
	return Workload{
		Name:        "mixed_operations",
		Description: "96 blended ALU/load/store operations - realistic scheduling mix",
		Program:     ops,
	}
}

// 6. Rename pressure - every instruction rewrites the same architectural
// register from always-ready sources, maximizing map-table turnover and
// free-list churn.
func renamePressure() Workload {
	ops := make([]insts.Operation, 0, 64)
	for i := 0; i < 64; i++ {
		ops = append(ops, insts.ALUOp(1, 2+i%6, 30))
	}
	return Workload{
		Name:        "rename_pressure",
		Description: "64 rewrites of one register - measures rename and free-list churn",
		Program:     ops,
	}
}

// 7. Fan out - one producer feeding a burst of consumers that all wake in
// the same cycle, exposing the issue-policy tie-break.
func fanOut() Workload {
	ops := make([]insts.Operation, 0, 33)
	ops = append(ops, insts.LoadOp(1, 2))
	for i := 0; i < 32; i++ {
		ops = append(ops, insts.ALUOp(4+i%20, 1, 30))
	}
	return Workload{
		Name:        "fan_out",
		Description: "1 producer and 32 same-cycle consumers - measures wakeup bursts",
		Program:     ops,
	}
}
