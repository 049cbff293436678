package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/timing/cache"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		c = cache.New(cache.Config{
			Size:          256,
			Associativity: 2,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   4,
		})
	})

	It("should miss on the first access to a block", func() {
		result := c.Access(0)
		Expect(result.Hit).To(BeFalse())
		Expect(result.Latency).To(Equal(4))
	})

	It("should hit on a repeated access", func() {
		c.Access(0)
		result := c.Access(0)
		Expect(result.Hit).To(BeTrue())
		Expect(result.Latency).To(Equal(1))
	})

	It("should hit anywhere within an installed block", func() {
		c.Access(0)
		Expect(c.Access(4).Hit).To(BeTrue())
		Expect(c.Access(60).Hit).To(BeTrue())
	})

	It("should miss across block boundaries", func() {
		c.Access(0)
		Expect(c.Access(64).Hit).To(BeFalse())
	})

	It("should evict when a set overflows", func() {
		// 2 sets of 2 ways; addresses 0, 128, 256 index set 0.
		c.Access(0)
		c.Access(128)
		result := c.Access(256)

		Expect(result.Hit).To(BeFalse())
		Expect(result.Evicted).To(BeTrue())
		Expect(c.Stats().Evictions).To(Equal(uint64(1)))
	})

	It("should evict the least recently used way", func() {
		c.Access(0)
		c.Access(128)
		c.Access(0) // now 128 is LRU

		result := c.Access(256)
		Expect(result.Evicted).To(BeTrue())
		Expect(result.EvictedAddr).To(Equal(uint64(128)))
		Expect(c.Contains(0)).To(BeTrue())
		Expect(c.Contains(128)).To(BeFalse())
	})

	It("should track statistics", func() {
		c.Access(0)
		c.Access(0)
		c.Access(64)

		stats := c.Stats()
		Expect(stats.Accesses).To(Equal(uint64(3)))
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(2)))
		Expect(stats.HitRate()).To(BeNumerically("~", 1.0/3.0, 1e-9))
	})

	It("should not disturb state through Contains", func() {
		Expect(c.Contains(0)).To(BeFalse())
		Expect(c.Stats().Accesses).To(Equal(uint64(0)))
	})

	It("should clear lines and statistics on Reset", func() {
		c.Access(0)
		c.Reset()

		Expect(c.Contains(0)).To(BeFalse())
		Expect(c.Stats().Accesses).To(Equal(uint64(0)))
	})
})
