package o3

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/rename"
)

var _ = Describe("ReservationStation", func() {
	var st *ReservationStation

	BeforeEach(func() {
		st = newStation("ALU0", insts.ALU, 1)
	})

	It("describes its kind and latency", func() {
		Expect(st.Kind()).To(Equal(insts.ALU))
		Expect(st.Latency()).To(Equal(1))
		Expect(st.Busy()).To(BeFalse())
	})

	It("is not ready while idle", func() {
		Expect(st.ReadyToIssue()).To(BeFalse())
	})

	It("holds an instruction until released", func() {
		inst := newInstruction(0, insts.ALUOp(1, 2, 3))
		st.Allocate(inst)

		Expect(st.Busy()).To(BeTrue())
		Expect(st.Instruction()).To(BeIdenticalTo(inst))

		st.Release()
		Expect(st.Busy()).To(BeFalse())
		Expect(st.Instruction()).To(BeNil())
	})

	It("is ready once every source is ready", func() {
		inst := newInstruction(0, insts.ALUOp(1, 2, 3))
		inst.Src1Reg = rename.PhysReg{Num: 8}
		inst.Src2Reg = rename.PhysReg{Num: 9, Ready: true}
		st.Allocate(inst)

		Expect(st.ReadyToIssue()).To(BeFalse())

		st.WakeUp(8)
		Expect(inst.Src1Reg.Ready).To(BeTrue())
		Expect(st.ReadyToIssue()).To(BeTrue())
	})

	It("ignores broadcasts for other registers", func() {
		inst := newInstruction(0, insts.ALUOp(1, 2, 3))
		inst.Src1Reg = rename.PhysReg{Num: 8}
		st.Allocate(inst)

		st.WakeUp(9)
		Expect(inst.Src1Reg.Ready).To(BeFalse())
		Expect(st.ReadyToIssue()).To(BeFalse())
	})

	It("is not ready again after issue", func() {
		inst := newInstruction(0, insts.ALUOp(1, 2, 3))
		inst.Src1Reg = rename.PhysReg{Num: 8, Ready: true}
		inst.Src2Reg = rename.PhysReg{Num: 9, Ready: true}
		st.Allocate(inst)
		Expect(st.ReadyToIssue()).To(BeTrue())

		inst.Issued = true
		Expect(st.ReadyToIssue()).To(BeFalse())
		Expect(st.Busy()).To(BeTrue())
	})
})
