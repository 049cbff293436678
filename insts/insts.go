// Package insts defines the instruction model for O3Sim.
//
// Instructions are scheduling tokens, not executable code: each one names an
// operation kind, up to two source architectural registers, and an optional
// destination architectural register. The simulator never computes data
// values, so there are no immediates, addresses, or encodings here.
//
// Usage:
//
//	op := insts.ALU(3, 1, 2) // r3 = ALU(r1, r2)
//	fmt.Println(op)          // "ALU r1, r2 -> r3"
package insts

import (
	"fmt"
	"strings"
)

// RegNone marks an absent register operand.
const RegNone = -1

// Kind classifies an operation by the reservation-station type it needs.
type Kind int

const (
	// ALU is an arithmetic or logic operation.
	ALU Kind = iota
	// Load is a memory read.
	Load
	// Store is a memory write. Stores carry no destination register.
	Store

	// NumKinds is the number of operation kinds.
	NumKinds
)

// String returns the canonical upper-case mnemonic for the kind.
func (k Kind) String() string {
	switch k {
	case ALU:
		return "ALU"
	case Load:
		return "LOAD"
	case Store:
		return "STORE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a mnemonic into a Kind. It accepts the canonical
// mnemonics ALU, LOAD, and STORE plus their single-letter forms A, L, and S,
// in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "ALU", "A":
		return ALU, nil
	case "LOAD", "L":
		return Load, nil
	case "STORE", "S":
		return Store, nil
	default:
		return 0, fmt.Errorf("unknown operation kind %q", s)
	}
}

// Operation is one static program instruction: a kind plus architectural
// register identifiers. Absent operands are RegNone.
type Operation struct {
	Kind Kind
	Src1 int
	Src2 int
	Dst  int
}

// NewOperation builds an Operation from raw fields in program-input order
// (kind, source 1, source 2, destination).
func NewOperation(kind Kind, src1, src2, dst int) Operation {
	return Operation{Kind: kind, Src1: src1, Src2: src2, Dst: dst}
}

// ALUOp returns an ALU operation writing dst from src1 and src2.
func ALUOp(dst, src1, src2 int) Operation {
	return Operation{Kind: ALU, Src1: src1, Src2: src2, Dst: dst}
}

// LoadOp returns a load reading through src into dst.
func LoadOp(dst, src int) Operation {
	return Operation{Kind: Load, Src1: src, Src2: RegNone, Dst: dst}
}

// StoreOp returns a store of src2 through src1. Stores have no destination.
func StoreOp(src1, src2 int) Operation {
	return Operation{Kind: Store, Src1: src1, Src2: src2, Dst: RegNone}
}

// HasDst reports whether the operation writes a destination register.
func (o Operation) HasDst() bool {
	return o.Dst != RegNone
}

// SrcRegs returns the present source registers in operand order.
func (o Operation) SrcRegs() []int {
	regs := make([]int, 0, 2)
	if o.Src1 != RegNone {
		regs = append(regs, o.Src1)
	}
	if o.Src2 != RegNone {
		regs = append(regs, o.Src2)
	}
	return regs
}

// Validate checks that every register identifier is RegNone or within
// [0, archRegs).
func (o Operation) Validate(archRegs int) error {
	for _, r := range []int{o.Src1, o.Src2, o.Dst} {
		if r != RegNone && (r < 0 || r >= archRegs) {
			return fmt.Errorf("register r%d out of range [0, %d)", r, archRegs)
		}
	}
	if o.Kind < 0 || o.Kind >= NumKinds {
		return fmt.Errorf("invalid operation kind %d", int(o.Kind))
	}
	return nil
}

// String formats the operation in source -> destination order, e.g.
// "ALU r1, r2 -> r3" or "STORE r4, r5".
func (o Operation) String() string {
	srcs := ""
	switch {
	case o.Src1 != RegNone && o.Src2 != RegNone:
		srcs = fmt.Sprintf("r%d, r%d", o.Src1, o.Src2)
	case o.Src1 != RegNone:
		srcs = fmt.Sprintf("r%d", o.Src1)
	case o.Src2 != RegNone:
		srcs = fmt.Sprintf("r%d", o.Src2)
	}
	if o.HasDst() {
		if srcs == "" {
			return fmt.Sprintf("%s -> r%d", o.Kind, o.Dst)
		}
		return fmt.Sprintf("%s %s -> r%d", o.Kind, srcs, o.Dst)
	}
	if srcs == "" {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s %s", o.Kind, srcs)
}
