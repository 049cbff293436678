package o3

import (
	"fmt"
	"strings"

	"github.com/sarchlab/o3sim/timing/rename"
)

// ROBEntry pairs an in-flight instruction with its renaming bookkeeping: the
// physical register allocated for its destination (NewReg) and the register
// that destination mapped to before dispatch (OldReg). Both are invalid for
// instructions without a destination.
type ROBEntry struct {
	Inst   *Instruction
	NewReg rename.PhysReg
	OldReg rename.PhysReg
}

// ReorderBuffer is a fixed-capacity circular buffer of in-flight instructions
// in dispatch order. Dispatch appends at the tail; retirement only ever
// removes the head, which is what makes retirement in-order.
type ReorderBuffer struct {
	entries []ROBEntry
	head    int
	count   int
}

// NewReorderBuffer creates a reorder buffer with the given capacity.
func NewReorderBuffer(capacity int) *ReorderBuffer {
	return &ReorderBuffer{
		entries: make([]ROBEntry, capacity),
	}
}

// Cap returns the buffer capacity.
func (r *ReorderBuffer) Cap() int {
	return len(r.entries)
}

// Len returns the number of in-flight entries.
func (r *ReorderBuffer) Len() int {
	return r.count
}

// Full reports whether another dispatch would be rejected.
func (r *ReorderBuffer) Full() bool {
	return r.count == len(r.entries)
}

// Empty reports whether no instructions are in flight.
func (r *ReorderBuffer) Empty() bool {
	return r.count == 0
}

// Push appends an entry at the tail, reporting false when the buffer is
// full. A full buffer is a dispatch stall, not an error.
func (r *ReorderBuffer) Push(inst *Instruction, newReg, oldReg rename.PhysReg) bool {
	if r.Full() {
		return false
	}
	tail := (r.head + r.count) % len(r.entries)
	r.entries[tail] = ROBEntry{Inst: inst, NewReg: newReg, OldReg: oldReg}
	r.count++
	return true
}

// Head returns the oldest entry without removing it.
func (r *ReorderBuffer) Head() (ROBEntry, bool) {
	if r.count == 0 {
		return ROBEntry{}, false
	}
	return r.entries[r.head], true
}

// PopHead removes and returns the oldest entry.
func (r *ReorderBuffer) PopHead() (ROBEntry, bool) {
	if r.count == 0 {
		return ROBEntry{}, false
	}
	entry := r.entries[r.head]
	r.entries[r.head] = ROBEntry{}
	r.head = (r.head + 1) % len(r.entries)
	r.count--
	return entry, true
}

// Entries returns the in-flight entries from head to tail.
func (r *ReorderBuffer) Entries() []ROBEntry {
	entries := make([]ROBEntry, 0, r.count)
	for i := 0; i < r.count; i++ {
		entries = append(entries, r.entries[(r.head+i)%len(r.entries)])
	}
	return entries
}

// String dumps the in-flight entries from head to tail.
func (r *ReorderBuffer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ROB[%d/%d]:", r.count, len(r.entries))
	for _, entry := range r.Entries() {
		fmt.Fprintf(&b, " {%s T=%s Told=%s}", entry.Inst, entry.NewReg, entry.OldReg)
	}
	return b.String()
}
