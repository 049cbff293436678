package o3

import (
	"fmt"
	"strings"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/rename"
)

// CycleNone marks a stage an instruction never reached.
const CycleNone = -1

// noStation marks an instruction that holds no reservation station.
const noStation = -1

// Timing records the cycle at which an instruction passed each stage,
// CycleNone where it never did. Each field is written at most once.
type Timing struct {
	Fetch    int
	Decode   int
	Dispatch int
	Issue    int
	Execute  int
	Complete int
	Retire   int
}

// Instruction is the dynamic state of one program instruction as it moves
// through the pipeline. The CPU creates one per program slot at load time and
// mutates it in place; the instruction keeps its identity through the final
// report.
type Instruction struct {
	// Seq is the program-order sequence number, fixed at load.
	Seq int

	// Op is the static operation this instruction performs.
	Op insts.Operation

	// Src1Reg and Src2Reg are the renamed source registers: value snapshots
	// of the speculative map table taken at dispatch. Readiness broadcasts
	// flip their Ready bits in place.
	Src1Reg rename.PhysReg
	Src2Reg rename.PhysReg

	// DstReg is the physical register allocated for the destination,
	// invalid when the operation has none.
	DstReg rename.PhysReg

	// Renamed is set once dispatch has rewritten the operands.
	Renamed bool

	// Issued is set when the instruction leaves its station for execution;
	// the station stays occupied until the execute stage frees it.
	Issued bool

	// Completed is set when the execution latency has elapsed and the
	// result has been broadcast.
	Completed bool

	// Retired is set when the reorder buffer commits the instruction.
	Retired bool

	// Station is the index of the reservation station holding this
	// instruction, noStation when none does.
	Station int

	// ExecLatency is the execution latency latched at the execute stage.
	ExecLatency int

	// Timing is the per-stage cycle record for the final report.
	Timing Timing
}

func newInstruction(seq int, op insts.Operation) *Instruction {
	return &Instruction{
		Seq:     seq,
		Op:      op,
		Src1Reg: rename.PhysReg{Num: rename.NoReg},
		Src2Reg: rename.PhysReg{Num: rename.NoReg},
		DstReg:  rename.PhysReg{Num: rename.NoReg},
		Station: noStation,
		Timing: Timing{
			Fetch:    CycleNone,
			Decode:   CycleNone,
			Dispatch: CycleNone,
			Issue:    CycleNone,
			Execute:  CycleNone,
			Complete: CycleNone,
			Retire:   CycleNone,
		},
	}
}

// HasDst reports whether the instruction writes a destination register.
func (i *Instruction) HasDst() bool {
	return i.Op.HasDst()
}

// SourcesReady reports whether every present source operand is ready.
// Absent sources are vacuously ready.
func (i *Instruction) SourcesReady() bool {
	if i.Op.Src1 != insts.RegNone && !i.Src1Reg.Ready {
		return false
	}
	if i.Op.Src2 != insts.RegNone && !i.Src2Reg.Ready {
		return false
	}
	return true
}

// wakeUp marks any source snapshot naming the broadcast register as ready.
func (i *Instruction) wakeUp(reg int) {
	if i.Src1Reg.Num == reg {
		i.Src1Reg.Ready = true
	}
	if i.Src2Reg.Num == reg {
		i.Src2Reg.Ready = true
	}
}

// String formats the instruction with its architectural operands and, once
// renamed, the physical registers backing them.
func (i *Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", i.Seq, i.Op.Kind)

	writeSrc := func(arch int, reg rename.PhysReg) {
		if arch == insts.RegNone {
			return
		}
		if i.Renamed {
			fmt.Fprintf(&b, " r%d(%s)", arch, reg)
		} else {
			fmt.Fprintf(&b, " r%d", arch)
		}
	}
	writeSrc(i.Op.Src1, i.Src1Reg)
	writeSrc(i.Op.Src2, i.Src2Reg)

	if i.HasDst() {
		if i.Renamed {
			fmt.Fprintf(&b, " -> r%d(%s)", i.Op.Dst, i.DstReg)
		} else {
			fmt.Fprintf(&b, " -> r%d", i.Op.Dst)
		}
	}
	return b.String()
}
