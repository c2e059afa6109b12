package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds the geometry of a directory-backed cache.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
}

// DirectMappedConfig returns the geometry of a direct-mapped cache of
// sizeKB kilobytes.
func DirectMappedConfig(sizeKB int) Config {
	return Config{
		Size:          sizeKB * 1024,
		Associativity: 1,
		BlockSize:     LineSize,
	}
}

// SetAssociativeConfig returns the geometry of the 16KB set-associative
// cache with the given number of ways.
func SetAssociativeConfig(ways int) Config {
	return Config{
		Size:          SetAssociativeLines * LineSize, // 16KB
		Associativity: ways,
		BlockSize:     LineSize,
	}
}

// FullyAssociativeConfig returns the geometry of the 512-line
// fully-associative cache.
func FullyAssociativeConfig() Config {
	return SetAssociativeConfig(SetAssociativeLines)
}

// NumSets returns the number of sets of the geometry.
func (c Config) NumSets() int {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return 0
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry describes a whole, power-of-two number
// of sets.
func (c Config) Validate() error {
	if c.BlockSize <= 0 || c.BlockSize&(c.BlockSize-1) != 0 {
		return &ConfigError{Model: "directory cache", Param: "block size", Value: c.BlockSize}
	}
	if c.Associativity <= 0 {
		return &ConfigError{Model: "directory cache", Param: "associativity", Value: c.Associativity}
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return &ConfigError{Model: "directory cache", Param: "size", Value: c.Size}
	}
	if _, err := indexBitsFor(c.NumSets()); err != nil {
		return &ConfigError{Model: "directory cache", Param: "number of sets", Value: c.NumSets()}
	}
	return nil
}

// DirectoryCache replays references through an Akita cache directory with
// an LRU victim finder. It follows the same policies as SetAssociative and
// serves as an independent implementation of the same behavior.
type DirectoryCache struct {
	// Configuration
	config Config
	policy Policy

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Statistics
	stats Statistics
}

// NewDirectoryCache creates a directory-backed cache.
func NewDirectoryCache(config Config, policy Policy) (*DirectoryCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &DirectoryCache{
		config: config,
		policy: policy,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}, nil
}

// Name returns the model identifier, e.g. "dir-sa-4way".
func (c *DirectoryCache) Name() string {
	switch {
	case c.config.Associativity == 1:
		return fmt.Sprintf("dir-dm-%dKB", c.config.Size/1024)
	case c.config.NumSets() == 1:
		return "dir-fa-lru"
	}

	prefix, ok := namePrefixes[c.policy]
	if !ok {
		prefix = c.policy.Family()
	}
	return fmt.Sprintf("dir-%s-%dway", prefix, c.config.Associativity)
}

// Config returns the cache configuration.
func (c *DirectoryCache) Config() Config {
	return c.config
}

// Policy returns the allocation and prefetch policy.
func (c *DirectoryCache) Policy() Policy {
	return c.policy
}

// Stats returns cache statistics.
func (c *DirectoryCache) Stats() Statistics {
	return c.stats
}

// blockAddr computes the block-aligned address of addr. The directory
// stores block-aligned addresses as tags.
func (c *DirectoryCache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Access applies one reference and, depending on the policy, a next-line
// prefetch.
func (c *DirectoryCache) Access(op Op, addr uint32) bool {
	blockAddr := c.blockAddr(uint64(addr))

	// PID=0, the trace has a single address space
	block := c.directory.Lookup(0, blockAddr)
	hit := block != nil && block.IsValid
	c.stats.record(op, hit)

	switch {
	case hit:
		c.directory.Visit(block) // Update LRU
	case c.policy.NoAllocateOnWriteMiss && op == Store:
	default:
		c.fill(blockAddr)
	}

	if c.policy.prefetches(hit) {
		c.prefetch(blockAddr + uint64(c.config.BlockSize))
	}

	return hit
}

// prefetch brings the block at blockAddr in without counting a reference.
// The address may lie beyond 4GB, in which case it names a line that no
// real reference can hit.
func (c *DirectoryCache) prefetch(blockAddr uint64) {
	c.stats.Prefetches++

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.directory.Visit(block)
		return
	}

	c.stats.PrefetchFills++
	c.fill(blockAddr)
}

// fill installs blockAddr over the LRU (or an invalid) block of its set.
func (c *DirectoryCache) fill(blockAddr uint64) {
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		// This shouldn't happen with proper directory setup
		return
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	c.directory.Visit(victim)
}

// Contains reports whether the line holding addr is resident, without
// updating recency.
func (c *DirectoryCache) Contains(addr uint32) bool {
	block := c.directory.Lookup(0, c.blockAddr(uint64(addr)))
	return block != nil && block.IsValid
}

// Resident returns the number of valid blocks in the directory.
func (c *DirectoryCache) Resident() int {
	n := 0
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}
	return n
}
