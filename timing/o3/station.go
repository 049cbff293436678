package o3

import (
	"fmt"

	"github.com/sarchlab/o3sim/insts"
)

// ReservationStation holds one dispatched instruction of a fixed kind until
// the issue stage sends it to execution. The station stays busy after issue;
// the execute stage frees it when the instruction leaves the scheduler.
type ReservationStation struct {
	name    string
	kind    insts.Kind
	latency int
	busy    bool
	inst    *Instruction
}

func newStation(name string, kind insts.Kind, latency int) *ReservationStation {
	return &ReservationStation{
		name:    name,
		kind:    kind,
		latency: latency,
	}
}

// Kind returns the operation kind this station serves.
func (s *ReservationStation) Kind() insts.Kind {
	return s.kind
}

// Latency returns the execution latency for instructions issued from this
// station.
func (s *ReservationStation) Latency() int {
	return s.latency
}

// Busy reports whether the station holds an instruction.
func (s *ReservationStation) Busy() bool {
	return s.busy
}

// Instruction returns the held instruction, nil when free.
func (s *ReservationStation) Instruction() *Instruction {
	return s.inst
}

// Allocate places an instruction in the station.
func (s *ReservationStation) Allocate(inst *Instruction) {
	s.busy = true
	s.inst = inst
}

// Release frees the station.
func (s *ReservationStation) Release() {
	s.busy = false
	s.inst = nil
}

// ReadyToIssue reports whether the held instruction can issue this cycle:
// present, not yet issued, and all source operands ready.
func (s *ReservationStation) ReadyToIssue() bool {
	return s.busy && s.inst != nil && !s.inst.Issued && s.inst.SourcesReady()
}

// WakeUp consumes a readiness broadcast for a physical register.
func (s *ReservationStation) WakeUp(reg int) {
	if !s.busy || s.inst == nil {
		return
	}
	s.inst.wakeUp(reg)
}

// String shows the station name and its occupant.
func (s *ReservationStation) String() string {
	if !s.busy {
		return fmt.Sprintf("%s: free", s.name)
	}
	return fmt.Sprintf("%s: {%s}", s.name, s.inst)
}
