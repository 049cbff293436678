package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should have single-cycle ALU operations", func() {
			Expect(table.Latency(insts.ALU)).To(Equal(1))
		})

		It("should have two-cycle loads", func() {
			Expect(table.Latency(insts.Load)).To(Equal(2))
		})

		It("should have two-cycle stores", func() {
			Expect(table.Latency(insts.Store)).To(Equal(2))
		})
	})

	Describe("Default Station Counts", func() {
		It("should provide two ALU stations", func() {
			Expect(table.Stations(insts.ALU)).To(Equal(2))
		})

		It("should provide one station each for loads and stores", func() {
			Expect(table.Stations(insts.Load)).To(Equal(1))
			Expect(table.Stations(insts.Store)).To(Equal(1))
		})

		It("should report the total station set size", func() {
			Expect(table.TotalStations()).To(Equal(4))
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom latencies", func() {
			config := latency.DefaultTimingConfig()
			config.LoadLatency = 5
			custom := latency.NewTableWithConfig(config)

			Expect(custom.Latency(insts.Load)).To(Equal(5))
			Expect(custom.Latency(insts.ALU)).To(Equal(1))
		})

		It("should use custom station counts", func() {
			config := latency.DefaultTimingConfig()
			config.ALUStations = 4
			config.StoreStations = 0
			custom := latency.NewTableWithConfig(config)

			Expect(custom.Stations(insts.ALU)).To(Equal(4))
			Expect(custom.Stations(insts.Store)).To(Equal(0))
			Expect(custom.TotalStations()).To(Equal(5))
		})
	})

	Describe("Validation", func() {
		It("should accept the default configuration", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})

		It("should reject non-positive latencies", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject negative station counts", func() {
			config := latency.DefaultTimingConfig()
			config.LoadStations = -1
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should accept zero station counts", func() {
			config := latency.DefaultTimingConfig()
			config.LoadStations = 0
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Config File Round Trip", func() {
		It("should save and reload a configuration", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "timing.json")

			config := latency.DefaultTimingConfig()
			config.LoadLatency = 7
			config.ALUStations = 3
			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadLatency).To(Equal(7))
			Expect(loaded.ALUStations).To(Equal(3))
			Expect(loaded.StoreLatency).To(Equal(2))
		})

		It("should keep defaults for fields absent from the file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"alu_latency": 3}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(3))
			Expect(loaded.LoadLatency).To(Equal(2))
			Expect(loaded.ALUStations).To(Equal(2))
		})

		It("should fail to load a missing file", func() {
			_, err := latency.LoadConfig("/nonexistent/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should clone into an independent copy", func() {
			config := latency.DefaultTimingConfig()
			clone := config.Clone()
			clone.ALULatency = 9

			Expect(config.ALULatency).To(Equal(1))
		})
	})
})
