package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/insts"
)

var _ = Describe("Kind", func() {
	It("should print canonical mnemonics", func() {
		Expect(insts.ALU.String()).To(Equal("ALU"))
		Expect(insts.Load.String()).To(Equal("LOAD"))
		Expect(insts.Store.String()).To(Equal("STORE"))
	})

	It("should parse canonical mnemonics", func() {
		k, err := insts.ParseKind("ALU")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(insts.ALU))

		k, err = insts.ParseKind("LOAD")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(insts.Load))

		k, err = insts.ParseKind("STORE")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(insts.Store))
	})

	It("should parse single-letter and lower-case forms", func() {
		k, err := insts.ParseKind("l")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(insts.Load))

		k, err = insts.ParseKind("store")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(insts.Store))
	})

	It("should reject unknown mnemonics", func() {
		_, err := insts.ParseKind("JUMP")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Operation", func() {
	It("should build ALU operations with two sources and a destination", func() {
		op := insts.ALUOp(3, 1, 2)
		Expect(op.Kind).To(Equal(insts.ALU))
		Expect(op.Src1).To(Equal(1))
		Expect(op.Src2).To(Equal(2))
		Expect(op.Dst).To(Equal(3))
		Expect(op.HasDst()).To(BeTrue())
	})

	It("should build loads with a single source", func() {
		op := insts.LoadOp(4, 2)
		Expect(op.Src1).To(Equal(2))
		Expect(op.Src2).To(Equal(insts.RegNone))
		Expect(op.SrcRegs()).To(Equal([]int{2}))
	})

	It("should build stores without a destination", func() {
		op := insts.StoreOp(4, 5)
		Expect(op.HasDst()).To(BeFalse())
		Expect(op.SrcRegs()).To(Equal([]int{4, 5}))
	})

	It("should format operations with sources before the destination", func() {
		Expect(insts.ALUOp(3, 1, 2).String()).To(Equal("ALU r1, r2 -> r3"))
		Expect(insts.LoadOp(4, 2).String()).To(Equal("LOAD r2 -> r4"))
		Expect(insts.StoreOp(4, 5).String()).To(Equal("STORE r4, r5"))
	})

	It("should validate register ranges", func() {
		Expect(insts.ALUOp(3, 1, 2).Validate(4)).To(Succeed())
		Expect(insts.ALUOp(4, 1, 2).Validate(4)).To(HaveOccurred())
		Expect(insts.StoreOp(0, 3).Validate(4)).To(Succeed())
		Expect(insts.LoadOp(0, 9).Validate(4)).To(HaveOccurred())
	})
})
