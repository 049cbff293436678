package rename_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/timing/rename"
)

var _ = Describe("FreeList", func() {
	var list *rename.FreeList

	BeforeEach(func() {
		list = rename.NewFreeList(4, 8)
	})

	It("should start with the non-architectural registers", func() {
		Expect(list.Len()).To(Equal(4))
		Expect(list.HasFree()).To(BeTrue())
	})

	It("should allocate in FIFO order", func() {
		num, ok := list.Pop()
		Expect(ok).To(BeTrue())
		Expect(num).To(Equal(4))

		num, ok = list.Pop()
		Expect(ok).To(BeTrue())
		Expect(num).To(Equal(5))
	})

	It("should fail to allocate when empty", func() {
		for i := 0; i < 4; i++ {
			_, ok := list.Pop()
			Expect(ok).To(BeTrue())
		}

		Expect(list.HasFree()).To(BeFalse())
		_, ok := list.Pop()
		Expect(ok).To(BeFalse())
	})

	It("should recycle released registers at the back", func() {
		first, _ := list.Pop()
		list.Push(first)

		Expect(list.Len()).To(Equal(4))
		for i := 0; i < 3; i++ {
			list.Pop()
		}
		num, ok := list.Pop()
		Expect(ok).To(BeTrue())
		Expect(num).To(Equal(first))
	})
})

var _ = Describe("MapTable", func() {
	var table *rename.MapTable

	BeforeEach(func() {
		table = rename.NewMapTable("map table", 4, 8)
	})

	It("should start with ready identity mappings", func() {
		for a := 0; a < 4; a++ {
			reg := table.Lookup(a)
			Expect(reg.Num).To(Equal(a))
			Expect(reg.Ready).To(BeTrue())
		}
	})

	It("should install a new mapping with its readiness bit", func() {
		table.SetMapping(2, rename.PhysReg{Num: 6, Ready: false})

		reg := table.Lookup(2)
		Expect(reg.Num).To(Equal(6))
		Expect(reg.Ready).To(BeFalse())
	})

	It("should flip readiness on MarkReady", func() {
		table.SetMapping(2, rename.PhysReg{Num: 6, Ready: false})
		table.MarkReady(6)

		Expect(table.Lookup(2).Ready).To(BeTrue())
		Expect(table.IsReady(6)).To(BeTrue())
	})

	It("should hand out snapshots that later remappings do not touch", func() {
		snapshot := table.Lookup(1)
		table.SetMapping(1, rename.PhysReg{Num: 7, Ready: false})

		Expect(snapshot.Num).To(Equal(1))
		Expect(snapshot.Ready).To(BeTrue())
		Expect(table.Lookup(1).Num).To(Equal(7))
	})

	It("should report the mapped register set", func() {
		table.SetMapping(0, rename.PhysReg{Num: 5, Ready: false})
		Expect(table.MappedRegs()).To(Equal([]int{5, 1, 2, 3}))
	})
})

var _ = Describe("PhysReg", func() {
	It("should format readiness with a plus suffix", func() {
		Expect(rename.PhysReg{Num: 3, Ready: true}.String()).To(Equal("p3+"))
		Expect(rename.PhysReg{Num: 3}.String()).To(Equal("p3"))
		Expect(rename.PhysReg{Num: rename.NoReg}.String()).To(Equal("p-"))
	})

	It("should report validity from the register number", func() {
		Expect(rename.PhysReg{Num: 0}.Valid()).To(BeTrue())
		Expect(rename.PhysReg{Num: rename.NoReg}.Valid()).To(BeFalse())
	})
})
