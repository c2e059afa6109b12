package cache

import (
	"fmt"
	"slices"
	"strings"
)

// SetAssociativeWays lists the supported associativities.
var SetAssociativeWays = []int{2, 4, 8, 16}

// Policy selects the allocation and prefetch behavior of a set-associative
// cache. The fields are independent.
type Policy struct {
	// NoAllocateOnWriteMiss leaves the cache untouched when a store misses.
	NoAllocateOnWriteMiss bool
	// PrefetchAlways brings the next line in after every reference.
	PrefetchAlways bool
	// PrefetchOnMiss brings the next line in after a missing reference.
	PrefetchOnMiss bool
}

// Policy presets matching the simulated families.
var (
	PolicyLRU            = Policy{}
	PolicyNoAllocate     = Policy{NoAllocateOnWriteMiss: true}
	PolicyPrefetch       = Policy{PrefetchAlways: true}
	PolicyPrefetchOnMiss = Policy{PrefetchOnMiss: true}
)

// Family returns the name of the family the policy belongs to. Policies
// that combine several toggles join their names with "+".
func (p Policy) Family() string {
	var parts []string
	if p.NoAllocateOnWriteMiss {
		parts = append(parts, "no_allocate")
	}
	if p.PrefetchAlways {
		parts = append(parts, "prefetch")
	}
	if p.PrefetchOnMiss {
		parts = append(parts, "prefetch_on_miss")
	}

	if len(parts) == 0 {
		return "set_associative"
	}

	return strings.Join(parts, "+")
}

var namePrefixes = map[Policy]string{
	PolicyLRU:            "sa",
	PolicyNoAllocate:     "noalloc",
	PolicyPrefetch:       "prefetch",
	PolicyPrefetchOnMiss: "onmiss",
}

func (p Policy) prefetches(hit bool) bool {
	return p.PrefetchAlways || (p.PrefetchOnMiss && !hit)
}

// SetAssociative is a 16KB cache with 32-byte lines organized as
// 512/ways sets, each replaced in true LRU order.
type SetAssociative struct {
	ways    int
	policy  Policy
	decoder Decoder
	sets    []lruSet
	stats   Statistics
}

// NewSetAssociative creates a set-associative cache.
func NewSetAssociative(ways int, policy Policy) (*SetAssociative, error) {
	if !slices.Contains(SetAssociativeWays, ways) {
		return nil, &ConfigError{Model: "set-associative cache", Param: "ways", Value: ways}
	}

	numSets := SetAssociativeLines / ways
	indexBits, err := indexBitsFor(numSets)
	if err != nil {
		return nil, err
	}

	c := &SetAssociative{
		ways:    ways,
		policy:  policy,
		decoder: NewDecoder(indexBits),
		sets:    make([]lruSet, numSets),
	}
	for i := range c.sets {
		c.sets[i] = newLRUSet(ways)
	}

	return c, nil
}

// Name returns the model identifier, e.g. "prefetch-8way".
func (c *SetAssociative) Name() string {
	prefix, ok := namePrefixes[c.policy]
	if !ok {
		prefix = c.policy.Family()
	}
	return fmt.Sprintf("%s-%dway", prefix, c.ways)
}

// Ways returns the associativity.
func (c *SetAssociative) Ways() int {
	return c.ways
}

// Policy returns the allocation and prefetch policy.
func (c *SetAssociative) Policy() Policy {
	return c.policy
}

// Decoder returns the address decoder of the cache.
func (c *SetAssociative) Decoder() Decoder {
	return c.decoder
}

// Access applies one reference and, depending on the policy, a next-line
// prefetch. The prefetch never changes the hit, miss or access counters.
func (c *SetAssociative) Access(op Op, addr uint32) bool {
	tag, index := c.decoder.Decode(addr)

	allocate := !(c.policy.NoAllocateOnWriteMiss && op == Store)
	hit, evicted := c.sets[index].lookup(tag, allocate)
	c.stats.record(op, hit)
	if evicted {
		c.stats.Evictions++
	}

	if c.policy.prefetches(hit) {
		c.prefetch(c.decoder.NextLine(tag, index))
	}

	return hit
}

func (c *SetAssociative) prefetch(tag, index uint32) {
	c.stats.Prefetches++

	present, evicted := c.sets[index].lookup(tag, true)
	if !present {
		c.stats.PrefetchFills++
	}
	if evicted {
		c.stats.Evictions++
	}
}

// Contains reports whether the line holding addr is resident, without
// updating recency.
func (c *SetAssociative) Contains(addr uint32) bool {
	tag, index := c.decoder.Decode(addr)
	return c.sets[index].find(tag) >= 0
}

// ResidentTags returns the tags of the set addr maps to, most recently used
// first.
func (c *SetAssociative) ResidentTags(addr uint32) []uint32 {
	_, index := c.decoder.Decode(addr)
	return c.sets[index].snapshot()
}

// Stats returns the counters accumulated so far.
func (c *SetAssociative) Stats() Statistics {
	return c.stats
}
