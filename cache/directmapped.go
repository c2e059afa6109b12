package cache

import (
	"fmt"
	"slices"
)

// DirectMappedSizesKB lists the supported direct-mapped capacities.
var DirectMappedSizesKB = []int{1, 4, 16, 32}

type dmSlot struct {
	tag   uint32
	valid bool
}

// DirectMapped is a cache with exactly one line per index. A miss always
// overwrites the slot, for loads and stores alike.
type DirectMapped struct {
	sizeKB  int
	decoder Decoder
	slots   []dmSlot
	stats   Statistics
}

// NewDirectMapped creates a direct-mapped cache of sizeKB kilobytes with
// 32-byte lines.
func NewDirectMapped(sizeKB int) (*DirectMapped, error) {
	if !slices.Contains(DirectMappedSizesKB, sizeKB) {
		return nil, &ConfigError{Model: "direct-mapped cache", Param: "size (KB)", Value: sizeKB}
	}

	entries := sizeKB * 1024 / LineSize
	indexBits, err := indexBitsFor(entries)
	if err != nil {
		return nil, err
	}

	return &DirectMapped{
		sizeKB:  sizeKB,
		decoder: NewDecoder(indexBits),
		slots:   make([]dmSlot, entries),
	}, nil
}

// Name returns the model identifier, e.g. "dm-16KB".
func (c *DirectMapped) Name() string {
	return fmt.Sprintf("dm-%dKB", c.sizeKB)
}

// SizeKB returns the capacity in kilobytes.
func (c *DirectMapped) SizeKB() int {
	return c.sizeKB
}

// Decoder returns the address decoder of the cache.
func (c *DirectMapped) Decoder() Decoder {
	return c.decoder
}

// Access applies one reference.
func (c *DirectMapped) Access(op Op, addr uint32) bool {
	tag, index := c.decoder.Decode(addr)
	slot := &c.slots[index]

	hit := slot.valid && slot.tag == tag
	c.stats.record(op, hit)
	if hit {
		return true
	}

	if slot.valid {
		c.stats.Evictions++
	}
	slot.tag = tag
	slot.valid = true

	return false
}

// Contains reports whether the line holding addr is resident. It does not
// change any state.
func (c *DirectMapped) Contains(addr uint32) bool {
	tag, index := c.decoder.Decode(addr)
	slot := c.slots[index]
	return slot.valid && slot.tag == tag
}

// Stats returns the counters accumulated so far.
func (c *DirectMapped) Stats() Statistics {
	return c.stats
}
