package o3

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/rename"
)

// retire removes completed instructions from the head of the reorder buffer,
// up to the machine width. Retirement is strictly in order: the first
// incomplete head instruction stops the stage for the cycle. A retiring
// writer commits its mapping to the architectural table and schedules its
// displaced register for the free list.
func (c *CPU) retire() {
	for n := 0; n < c.config.Width; n++ {
		entry, ok := c.rob.Head()
		if !ok || !entry.Inst.Completed {
			break
		}
		c.rob.PopHead()

		inst := entry.Inst
		if inst.HasDst() {
			c.archTable.SetMapping(inst.Op.Dst,
				rename.PhysReg{Num: entry.NewReg.Num, Ready: true})
			c.pendingFree = append(c.pendingFree, entry.OldReg.Num)
		}
		inst.Retired = true
		inst.Timing.Retire = c.cycle
		c.stats.Retired++
		c.progress = true
		c.trace("retire", inst)
	}
}

// complete finishes every in-flight instruction whose execution latency has
// elapsed and broadcasts its destination register to the stations and the
// map table. Instructions still counting down return to the working set;
// waiting out a latency is forward progress, no matter how long the latency.
func (c *CPU) complete() {
	if c.completeQueue.empty() {
		return
	}
	for _, inst := range c.completeQueue.takeAll() {
		if c.cycle < inst.Timing.Execute+inst.ExecLatency {
			c.completeQueue.push(inst)
			c.progress = true
			continue
		}

		if inst.HasDst() {
			inst.DstReg.Ready = true
			c.broadcast(inst.DstReg.Num)
		}
		inst.Completed = true
		inst.Timing.Complete = c.cycle
		c.stats.Completed++
		c.progress = true
		c.trace("complete", inst)
	}
}

// execute starts issued instructions, up to the machine width. Starting
// execution claims a slot in the complete working set, latches the
// execution latency, and releases the reservation station for reuse.
func (c *CPU) execute() {
	for n := 0; n < c.config.Width; n++ {
		inst, ok := c.executeQueue.front()
		if !ok {
			break
		}
		if !c.completeQueue.push(inst) {
			c.stats.QueueStalls++
			break
		}
		c.executeQueue.pop()

		st := c.stations[inst.Station]
		inst.ExecLatency = st.Latency()
		st.Release()
		inst.Station = noStation

		inst.Timing.Execute = c.cycle
		c.stats.Executed++
		c.progress = true
		c.trace("execute", inst)
	}
}

// issue moves ready station instructions into the execute queue, up to the
// machine width. An instruction is ready once every renamed source it
// carries is marked ready. Issued instructions keep their station until
// execution starts.
func (c *CPU) issue() {
	switch c.config.IssuePolicy {
	case IssueOldestFirst:
		c.issueOldestFirst()
	default:
		c.issueStationOrder()
	}
}

func (c *CPU) issueStationOrder() {
	issued := 0
	for _, st := range c.stations {
		if issued >= c.config.Width {
			return
		}
		if !st.ReadyToIssue() {
			continue
		}
		if !c.issueFrom(st) {
			return
		}
		issued++
	}
}

func (c *CPU) issueOldestFirst() {
	ready := make([]*ReservationStation, 0, len(c.stations))
	for _, st := range c.stations {
		if st.ReadyToIssue() {
			ready = append(ready, st)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return ready[i].Instruction().Seq < ready[j].Instruction().Seq
	})

	for i, st := range ready {
		if i >= c.config.Width {
			return
		}
		if !c.issueFrom(st) {
			return
		}
	}
}

func (c *CPU) issueFrom(st *ReservationStation) bool {
	inst := st.Instruction()
	if !c.executeQueue.push(inst) {
		c.stats.QueueStalls++
		return false
	}
	inst.Issued = true
	inst.Timing.Issue = c.cycle
	c.stats.Issued++
	c.progress = true
	c.trace("issue", inst)
	return true
}

// dispatch renames decoded instructions and places them into a reservation
// station and the reorder buffer, up to the machine width and strictly in
// program order. Any missing resource — reorder-buffer entry, station of
// the required kind, or free physical register for a writer — stalls the
// stage at the blocked instruction.
func (c *CPU) dispatch() {
	for n := 0; n < c.config.Width; n++ {
		inst, ok := c.dispatchQueue.front()
		if !ok {
			break
		}
		if c.rob.Full() {
			c.stats.ROBStalls++
			break
		}
		stIdx := c.freeStation(inst.Op.Kind)
		if stIdx < 0 {
			c.stats.StationStalls++
			break
		}
		if inst.HasDst() && !c.freeList.HasFree() {
			c.stats.RegStalls++
			break
		}

		before := ""
		if c.tracer.GetLevel() <= zerolog.DebugLevel {
			before = inst.String()
		}

		if inst.Op.Src1 != insts.RegNone {
			inst.Src1Reg = c.mapTable.Lookup(inst.Op.Src1)
		}
		if inst.Op.Src2 != insts.RegNone {
			inst.Src2Reg = c.mapTable.Lookup(inst.Op.Src2)
		}

		newReg := rename.PhysReg{Num: rename.NoReg}
		oldReg := rename.PhysReg{Num: rename.NoReg}
		if inst.HasDst() {
			num, _ := c.freeList.Pop()
			newReg = rename.PhysReg{Num: num}
			oldReg = c.mapTable.Lookup(inst.Op.Dst)
			c.mapTable.SetMapping(inst.Op.Dst, newReg)
			inst.DstReg = newReg
		}
		inst.Renamed = true

		c.rob.Push(inst, newReg, oldReg)
		c.stations[stIdx].Allocate(inst)
		inst.Station = stIdx

		c.dispatchQueue.pop()
		inst.Timing.Dispatch = c.cycle
		c.stats.Dispatched++
		c.progress = true
		c.traceRename(before, inst)
	}
}

// freeStation returns the index of the first idle station of the given
// kind, or -1 when every station of that kind is busy.
func (c *CPU) freeStation(kind insts.Kind) int {
	for i, st := range c.stations {
		if st.Kind() == kind && !st.Busy() {
			return i
		}
	}
	return -1
}

// decode relays fetched instructions toward dispatch, up to the machine
// width. Decode does no work of its own in this model; it exists to charge
// the front-end pipeline depth.
func (c *CPU) decode() {
	for n := 0; n < c.config.Width; n++ {
		inst, ok := c.decodeQueue.front()
		if !ok {
			break
		}
		if !c.dispatchQueue.push(inst) {
			c.stats.QueueStalls++
			break
		}
		c.decodeQueue.pop()

		inst.Timing.Decode = c.cycle
		c.stats.Decoded++
		c.progress = true
		c.trace("decode", inst)
	}
}

// fetch brings program instructions into the pipeline, up to the machine
// width. With the fetch-cache model enabled, each instruction pays a cache
// access: a hit costs nothing extra, a miss stalls fetch until the miss
// latency has elapsed. Waiting out a miss is forward progress.
func (c *CPU) fetch() {
	if c.fetchDelay > 0 {
		c.fetchDelay--
		c.progress = true
		return
	}

	for n := 0; n < c.config.Width && c.fetching; n++ {
		if c.fetchPtr >= len(c.program) {
			c.fetching = false
			break
		}
		inst := c.program[c.fetchPtr]

		if c.fetchCache != nil && !c.fetchPaid {
			result := c.fetchCache.Access(uint64(inst.Seq) * instBytes)
			if !result.Hit {
				// The line arrives after the miss latency; the access is
				// paid, so the instruction does not pay again.
				c.fetchPaid = true
				c.fetchDelay = result.Latency - 1
				if c.fetchDelay > 0 {
					c.progress = true
					return
				}
			}
		}

		if !c.decodeQueue.push(inst) {
			c.stats.QueueStalls++
			break
		}
		c.fetchPaid = false

		inst.Timing.Fetch = c.cycle
		c.stats.Fetched++
		c.progress = true
		c.trace("fetch", inst)

		c.fetchPtr++
		if c.fetchPtr >= len(c.program) {
			c.fetching = false
		}
	}
}

func (c *CPU) traceRename(before string, inst *Instruction) {
	c.tracer.Debug().
		Int("cycle", c.cycle).
		Str("stage", "dispatch").
		Str("before", before).
		Stringer("after", inst).
		Msg("rename")
}
