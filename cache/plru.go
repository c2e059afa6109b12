package cache

import "fmt"

// PseudoLRUDepth is the number of tree levels, root to leaf, of the default
// hot/cold tree. It yields 512 leaves.
const PseudoLRUDepth = 10

type plruLeaf struct {
	tag      uint32
	occupied bool
}

// PseudoLRU is a fully-associative cache approximating LRU with a binary
// hot/cold tree. Every internal node keeps one direction bit and every leaf
// holds one line. The tree is stored as an implicit heap: node i has
// children 2i+1 and 2i+2.
type PseudoLRU struct {
	depth   int
	decoder Decoder
	goLeft  []bool
	leaves  []plruLeaf
	stats   Statistics
}

// NewPseudoLRU creates the 512-leaf hot/cold cache.
func NewPseudoLRU() *PseudoLRU {
	c, _ := NewPseudoLRUWithDepth(PseudoLRUDepth)
	return c
}

// NewPseudoLRUWithDepth creates a hot/cold cache whose tree has depth
// levels and 2^(depth-1) leaves.
func NewPseudoLRUWithDepth(depth int) (*PseudoLRU, error) {
	if depth < 1 || depth > 16 {
		return nil, &ConfigError{Model: "pseudo-LRU cache", Param: "depth", Value: depth}
	}

	numLeaves := 1 << (depth - 1)
	c := &PseudoLRU{
		depth:   depth,
		decoder: NewDecoder(0),
		goLeft:  make([]bool, numLeaves-1),
		leaves:  make([]plruLeaf, numLeaves),
	}
	for i := range c.goLeft {
		c.goLeft[i] = true
	}

	return c, nil
}

// Name returns the model identifier.
func (c *PseudoLRU) Name() string {
	if c.depth == PseudoLRUDepth {
		return "fa-plru"
	}
	return fmt.Sprintf("fa-plru-%dway", len(c.leaves))
}

// Ways returns the number of leaves.
func (c *PseudoLRU) Ways() int {
	return len(c.leaves)
}

// Access applies one reference.
func (c *PseudoLRU) Access(op Op, addr uint32) bool {
	tag, _ := c.decoder.Decode(addr)

	if leaf := c.find(tag); leaf >= 0 {
		c.stats.record(op, true)
		c.pointAway(leaf)
		return true
	}

	c.stats.record(op, false)
	leaf := c.replace()
	if c.leaves[leaf].occupied {
		c.stats.Evictions++
	}
	c.leaves[leaf] = plruLeaf{tag: tag, occupied: true}

	return false
}

func (c *PseudoLRU) find(tag uint32) int {
	for i, l := range c.leaves {
		if l.occupied && l.tag == tag {
			return i
		}
	}
	return -1
}

// pointAway walks from a leaf to the root and turns every ancestor that
// points toward the path so that it points away from it.
func (c *PseudoLRU) pointAway(leaf int) {
	node := c.leafNode(leaf)
	for node > 0 {
		parent := (node - 1) / 2
		fromLeft := node == 2*parent+1
		if fromLeft && c.goLeft[parent] {
			c.goLeft[parent] = false
		} else if !fromLeft && !c.goLeft[parent] {
			c.goLeft[parent] = true
		}
		node = parent
	}
}

// replace follows the direction bits from the root, flipping each one on
// the way down, and returns the leaf reached.
func (c *PseudoLRU) replace() int {
	node := 0
	for node < len(c.goLeft) {
		left := c.goLeft[node]
		c.goLeft[node] = !left
		node = child(node, left)
	}
	return node - len(c.goLeft)
}

// Victim returns the leaf the next miss would fill, without changing any
// state.
func (c *PseudoLRU) Victim() int {
	node := 0
	for node < len(c.goLeft) {
		node = child(node, c.goLeft[node])
	}
	return node - len(c.goLeft)
}

// Leaf returns the tag held by a leaf and whether the leaf is occupied.
func (c *PseudoLRU) Leaf(i int) (uint32, bool) {
	l := c.leaves[i]
	return l.tag, l.occupied
}

// Occupied returns the number of leaves holding a line.
func (c *PseudoLRU) Occupied() int {
	n := 0
	for _, l := range c.leaves {
		if l.occupied {
			n++
		}
	}
	return n
}

// Contains reports whether the line holding addr is resident, without
// changing any state.
func (c *PseudoLRU) Contains(addr uint32) bool {
	tag, _ := c.decoder.Decode(addr)
	return c.find(tag) >= 0
}

// Stats returns the counters accumulated so far.
func (c *PseudoLRU) Stats() Statistics {
	return c.stats
}

func (c *PseudoLRU) leafNode(leaf int) int {
	return len(c.goLeft) + leaf
}

func child(node int, left bool) int {
	if left {
		return 2*node + 1
	}
	return 2*node + 2
}
