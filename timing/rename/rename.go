// Package rename provides the register-renaming structures for the
// out-of-order core: physical registers, the free list, and the map tables.
//
// Two map-table instances exist per core. The speculative table is updated at
// dispatch and answers source lookups; the architectural table is updated
// only at retirement and always reflects committed state.
package rename

import (
	"fmt"
	"strings"
)

// NoReg marks an absent physical register.
const NoReg = -1

// PhysReg is a physical-register snapshot: a register number and the
// readiness of its value at the moment of the lookup. Snapshots taken at
// rename time go stale only in one direction: a later broadcast can flip a
// consumer's copy to ready, never back.
type PhysReg struct {
	Num   int
	Ready bool
}

// Valid reports whether the snapshot names a real register.
func (r PhysReg) Valid() bool {
	return r.Num != NoReg
}

// String formats the register as pN, with "+" appended when ready.
func (r PhysReg) String() string {
	if !r.Valid() {
		return "p-"
	}
	if r.Ready {
		return fmt.Sprintf("p%d+", r.Num)
	}
	return fmt.Sprintf("p%d", r.Num)
}

// FreeList is the pool of physical-register numbers not currently mapped by
// either map table. A new core's free list holds [archRegs, physRegs); the
// identity mappings of the architectural registers are never free.
type FreeList struct {
	regs []int
}

// NewFreeList creates a free list for a machine with archRegs architectural
// and physRegs physical registers.
func NewFreeList(archRegs, physRegs int) *FreeList {
	f := &FreeList{regs: make([]int, 0, physRegs-archRegs)}
	for p := archRegs; p < physRegs; p++ {
		f.regs = append(f.regs, p)
	}
	return f
}

// HasFree reports whether at least one register can be allocated.
func (f *FreeList) HasFree() bool {
	return len(f.regs) > 0
}

// Len returns the number of free registers.
func (f *FreeList) Len() int {
	return len(f.regs)
}

// Pop allocates the register at the front of the list. The second return is
// false when the list is empty; allocation failure is a stall condition for
// the caller, never an error.
func (f *FreeList) Pop() (int, bool) {
	if len(f.regs) == 0 {
		return NoReg, false
	}
	num := f.regs[0]
	f.regs = f.regs[1:]
	return num, true
}

// Push returns a register to the back of the list.
func (f *FreeList) Push(num int) {
	f.regs = append(f.regs, num)
}

// String lists the free registers in allocation order.
func (f *FreeList) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FreeList[%d]:", len(f.regs))
	for _, num := range f.regs {
		fmt.Fprintf(&b, " p%d", num)
	}
	return b.String()
}

// MapTable maps architectural registers to physical registers and tracks a
// readiness bit per physical register. Lookup returns value snapshots, so a
// caller's copy is insulated from later remappings.
type MapTable struct {
	name    string
	mapping []int
	ready   []bool
}

// NewMapTable creates a map table with identity mappings: architectural
// register a maps to physical register a, ready. Physical registers above
// the architectural range start out unmapped and not ready.
func NewMapTable(name string, archRegs, physRegs int) *MapTable {
	m := &MapTable{
		name:    name,
		mapping: make([]int, archRegs),
		ready:   make([]bool, physRegs),
	}
	for a := 0; a < archRegs; a++ {
		m.mapping[a] = a
		m.ready[a] = true
	}
	return m
}

// Lookup returns the current mapping of an architectural register together
// with the readiness of that physical register.
func (m *MapTable) Lookup(arch int) PhysReg {
	num := m.mapping[arch]
	return PhysReg{Num: num, Ready: m.ready[num]}
}

// SetMapping redirects an architectural register to a new physical register
// and installs the snapshot's readiness bit for it.
func (m *MapTable) SetMapping(arch int, reg PhysReg) {
	m.mapping[arch] = reg.Num
	m.ready[reg.Num] = reg.Ready
}

// MarkReady sets the readiness bit of a physical register. Broadcasts from
// the complete stage land here.
func (m *MapTable) MarkReady(num int) {
	m.ready[num] = true
}

// IsReady reports the readiness bit of a physical register.
func (m *MapTable) IsReady(num int) bool {
	return m.ready[num]
}

// MappedRegs returns the physical registers currently mapped, indexed by
// architectural register.
func (m *MapTable) MappedRegs() []int {
	regs := make([]int, len(m.mapping))
	copy(regs, m.mapping)
	return regs
}

// String dumps the table one architectural register per mapping, with "+"
// marking ready physical registers.
func (m *MapTable) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:", m.name)
	for a, num := range m.mapping {
		fmt.Fprintf(&b, " r%d=%s", a, PhysReg{Num: num, Ready: m.ready[num]})
	}
	return b.String()
}
