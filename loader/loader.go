// Package loader reads programs from the plain-text trace format.
//
// Each non-empty line describes one instruction as four whitespace-separated
// fields:
//
//	KIND SRC1 SRC2 DST
//
// KIND is ALU, LOAD, or STORE (single-letter forms accepted). Registers are
// architectural register numbers; -1 marks an operand the instruction does
// not use. Everything after # on a line is a comment.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/o3sim/insts"
)

// Load reads a program file.
func Load(path string) ([]insts.Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer f.Close()

	ops, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ops, nil
}

// Parse reads a program from r.
func Parse(r io.Reader) ([]insts.Operation, error) {
	var ops []insts.Operation

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op, err := parseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return ops, nil
}

func parseLine(fields []string) (insts.Operation, error) {
	if len(fields) != 4 {
		return insts.Operation{}, fmt.Errorf(
			"expected 4 fields (KIND SRC1 SRC2 DST), got %d", len(fields))
	}

	kind, err := insts.ParseKind(fields[0])
	if err != nil {
		return insts.Operation{}, err
	}

	regs := make([]int, 3)
	for i, field := range fields[1:] {
		reg, err := strconv.Atoi(field)
		if err != nil {
			return insts.Operation{}, fmt.Errorf("bad register %q", field)
		}
		if reg < insts.RegNone {
			return insts.Operation{}, fmt.Errorf("bad register %d", reg)
		}
		regs[i] = reg
	}

	return insts.NewOperation(kind, regs[0], regs[1], regs[2]), nil
}
