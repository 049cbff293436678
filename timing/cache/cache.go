// Package cache provides a tag-only cache timing model built on Akita cache
// components.
//
// The simulator never moves data, so the cache tracks tags and replacement
// state only: an access answers hit-or-miss and a latency. The core uses it
// to model the instruction-fetch path, where instruction n lives at address
// n*4.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency int
	// MissLatency in cycles (includes the next-level access)
	MissLatency int
}

// DefaultFetchConfig returns the default configuration for the
// instruction-fetch cache: a small 2-way cache with 64-byte lines, so one
// line covers sixteen instructions.
func DefaultFetchConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 2,
		BlockSize:     64,
		HitLatency:    1,
		MissLatency:   4,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles the access takes.
	Latency int
	// Evicted is true when the access displaced a valid block.
	Evicted bool
	// EvictedAddr is the block address of the displaced block.
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Accesses  uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the fraction of accesses that hit, or 0 before any access.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

// Cache is a tag-only cache using an Akita cache directory for tag and
// replacement-state management.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Access looks up an address, installing its block on a miss. The returned
// latency is HitLatency on a hit and MissLatency on a miss.
func (c *Cache) Access(addr uint64) AccessResult {
	c.stats.Accesses++

	blockAddr := (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	c.directory.Visit(victim)

	return result
}

// Contains reports whether an address is resident without touching
// replacement state or statistics.
func (c *Cache) Contains(addr uint64) bool {
	blockAddr := (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
	block := c.directory.Lookup(0, blockAddr)
	return block != nil && block.IsValid
}

// Reset invalidates all cache lines and clears the statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
