package cache

import "fmt"

// FullyAssociativeLRU is a single set holding every line of the cache,
// replaced in true LRU order. It has no index bits.
type FullyAssociativeLRU struct {
	decoder Decoder
	set     lruSet
	stats   Statistics
}

// NewFullyAssociativeLRU creates the 512-line fully-associative cache.
func NewFullyAssociativeLRU() *FullyAssociativeLRU {
	c, _ := NewFullyAssociativeLRUWithWays(SetAssociativeLines)
	return c
}

// NewFullyAssociativeLRUWithWays creates a fully-associative cache with a
// custom number of lines.
func NewFullyAssociativeLRUWithWays(ways int) (*FullyAssociativeLRU, error) {
	if ways <= 0 {
		return nil, &ConfigError{Model: "fully-associative cache", Param: "ways", Value: ways}
	}

	return &FullyAssociativeLRU{
		decoder: NewDecoder(0),
		set:     newLRUSet(ways),
	}, nil
}

// Name returns the model identifier.
func (c *FullyAssociativeLRU) Name() string {
	if c.set.ways == SetAssociativeLines {
		return "fa-lru"
	}
	return fmt.Sprintf("fa-lru-%dway", c.set.ways)
}

// Ways returns the number of lines.
func (c *FullyAssociativeLRU) Ways() int {
	return c.set.ways
}

// Access applies one reference.
func (c *FullyAssociativeLRU) Access(op Op, addr uint32) bool {
	tag, _ := c.decoder.Decode(addr)

	hit, evicted := c.set.lookup(tag, true)
	c.stats.record(op, hit)
	if evicted {
		c.stats.Evictions++
	}

	return hit
}

// Contains reports whether the line holding addr is resident, without
// updating recency.
func (c *FullyAssociativeLRU) Contains(addr uint32) bool {
	tag, _ := c.decoder.Decode(addr)
	return c.set.find(tag) >= 0
}

// ResidentTags returns every resident tag, most recently used first.
func (c *FullyAssociativeLRU) ResidentTags() []uint32 {
	return c.set.snapshot()
}

// Stats returns the counters accumulated so far.
func (c *FullyAssociativeLRU) Stats() Statistics {
	return c.stats
}
