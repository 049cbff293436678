package benchmarks_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/benchmarks"
	"github.com/sarchlab/o3sim/timing/o3"
)

var _ = Describe("Workloads", func() {
	It("provides the standard set", func() {
		workloads := benchmarks.GetWorkloads()
		Expect(workloads).To(HaveLen(7))

		seen := map[string]bool{}
		for _, w := range workloads {
			Expect(w.Name).NotTo(BeEmpty())
			Expect(seen[w.Name]).To(BeFalse(), "duplicate workload %s", w.Name)
			seen[w.Name] = true
			Expect(w.Program).NotTo(BeEmpty())
		}
	})

	It("stays within the default architectural register file", func() {
		cfg := o3.DefaultConfig()
		for _, w := range benchmarks.GetWorkloads() {
			for i, op := range w.Program {
				Expect(op.Validate(cfg.ArchRegs)).To(Succeed(),
					"%s instruction %d", w.Name, i)
			}
		}
	})
})

var _ = Describe("Harness", func() {
	var out *strings.Builder

	newHarness := func(cfg benchmarks.HarnessConfig) *benchmarks.Harness {
		out = &strings.Builder{}
		cfg.Output = out
		return benchmarks.NewHarness(cfg)
	}

	It("produces one result per workload and width", func() {
		cfg := benchmarks.DefaultConfig()
		cfg.Widths = []int{1, 4}
		h := newHarness(cfg)
		h.AddWorkloads(benchmarks.GetCoreWorkloads())

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(6))
	})

	It("keeps IPC within the machine width", func() {
		cfg := benchmarks.DefaultConfig()
		cfg.Widths = []int{1, 2, 4}
		h := newHarness(cfg)
		h.AddWorkloads(benchmarks.GetWorkloads())

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())

		for _, r := range results {
			Expect(r.IPC).To(BeNumerically(">", 0), r.Name)
			Expect(r.IPC).To(BeNumerically("<=", float64(r.Width)), r.Name)
			Expect(r.Instructions).To(Equal(len(findWorkload(r.Name).Program)))
		}
	})

	It("speeds up parallel work with width", func() {
		cfg := benchmarks.DefaultConfig()
		cfg.Widths = []int{1, 4}
		h := newHarness(cfg)
		h.AddWorkload(findWorkload("arithmetic_independent"))

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[1].Cycles).To(BeNumerically("<", results[0].Cycles))
	})

	It("does not speed up serialized work with width", func() {
		cfg := benchmarks.DefaultConfig()
		cfg.Widths = []int{4}
		h := newHarness(cfg)
		h.AddWorkload(findWorkload("dependency_chain"))
		h.AddWorkload(findWorkload("arithmetic_independent"))

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].IPC).To(BeNumerically("<", results[1].IPC))
	})

	It("collects fetch-cache statistics when enabled", func() {
		cfg := benchmarks.DefaultConfig()
		cfg.Widths = []int{4}
		cfg.FetchCache = true
		h := newHarness(cfg)
		h.AddWorkload(findWorkload("mixed_operations"))

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].FetchMisses).To(BeNumerically(">", uint64(0)))
		Expect(results[0].FetchHits).To(BeNumerically(">", uint64(0)))
	})

	Describe("output", func() {
		var results []benchmarks.Result
		var h *benchmarks.Harness

		BeforeEach(func() {
			cfg := benchmarks.DefaultConfig()
			cfg.Widths = []int{2}
			h = newHarness(cfg)
			h.AddWorkloads(benchmarks.GetCoreWorkloads())

			var err error
			results, err = h.RunAll()
			Expect(err).NotTo(HaveOccurred())
		})

		It("prints a human-readable summary", func() {
			h.PrintResults(results)
			Expect(out.String()).To(ContainSubstring("Workload: arithmetic_independent"))
			Expect(out.String()).To(ContainSubstring("IPC:"))
		})

		It("prints one CSV row per result", func() {
			h.PrintCSV(results)
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			Expect(lines).To(HaveLen(len(results) + 1))
			Expect(lines[0]).To(HavePrefix("name,width,cycles"))
		})
	})
})

func findWorkload(name string) benchmarks.Workload {
	for _, w := range benchmarks.GetWorkloads() {
		if w.Name == name {
			return w
		}
	}
	Fail("unknown workload " + name)
	return benchmarks.Workload{}
}
