package o3

import (
	"fmt"
	"strings"
)

// stageQueue is a capacity-bounded FIFO connecting consecutive pipeline
// stages. A rejected push is the stall signal between stages; it is never an
// error.
type stageQueue struct {
	name  string
	cap   int
	items []*Instruction
}

func newStageQueue(name string, capacity int) *stageQueue {
	return &stageQueue{
		name:  name,
		cap:   capacity,
		items: make([]*Instruction, 0, capacity),
	}
}

// push appends an instruction, reporting false when the queue is full.
func (q *stageQueue) push(inst *Instruction) bool {
	if len(q.items) >= q.cap {
		return false
	}
	q.items = append(q.items, inst)
	return true
}

// front returns the oldest instruction without removing it.
func (q *stageQueue) front() (*Instruction, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// pop removes and returns the oldest instruction.
func (q *stageQueue) pop() (*Instruction, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	inst := q.items[0]
	q.items = q.items[1:]
	return inst, true
}

// takeAll empties the queue and returns its contents in arrival order. The
// complete stage uses it to partition the working set each cycle.
func (q *stageQueue) takeAll() []*Instruction {
	items := q.items
	q.items = make([]*Instruction, 0, q.cap)
	return items
}

func (q *stageQueue) len() int {
	return len(q.items)
}

func (q *stageQueue) empty() bool {
	return len(q.items) == 0
}

func (q *stageQueue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d/%d]:", q.name, len(q.items), q.cap)
	for _, inst := range q.items {
		fmt.Fprintf(&b, " {%s}", inst)
	}
	return b.String()
}
