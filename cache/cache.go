// Package cache provides functional cache models that count hits and misses
// for a trace of memory references. Only line identity is modeled; no data
// is stored.
package cache

import "fmt"

const (
	// AddressBits is the width of every simulated address.
	AddressBits = 32
	// OffsetBits is the number of low-order address bits selecting a byte
	// within a line. They never take part in hit/miss decisions.
	OffsetBits = 5
	// LineSize is the size of a cache line in bytes.
	LineSize = 1 << OffsetBits
	// SetAssociativeLines is the total number of lines of every
	// set-associative and fully-associative model (16KB / 32B).
	SetAssociativeLines = 512
)

// Op is the kind of a memory reference.
type Op uint8

const (
	// Load is a memory read.
	Load Op = iota
	// Store is a memory write.
	Store
)

// String returns the trace mnemonic of the operation.
func (o Op) String() string {
	switch o {
	case Load:
		return "L"
	case Store:
		return "S"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Model is a cache organization that can replay memory references.
type Model interface {
	// Name returns a unique, human-readable identifier such as "sa-4way".
	Name() string
	// Access applies one reference and reports whether it hit.
	Access(op Op, addr uint32) bool
	// Stats returns the counters accumulated so far.
	Stats() Statistics
}

// Statistics holds the counters of one model.
type Statistics struct {
	Accesses  uint64
	Loads     uint64
	Stores    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// Prefetches counts synthetic next-line probes. They are not part of
	// Accesses, Hits or Misses.
	Prefetches uint64
	// PrefetchFills counts prefetch probes that installed a line.
	PrefetchFills uint64
}

// HitRate returns Hits/Accesses, or 0 before the first access.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

// MissRate returns Misses/Accesses, or 0 before the first access.
func (s Statistics) MissRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Misses) / float64(s.Accesses)
}

func (s *Statistics) record(op Op, hit bool) {
	s.Accesses++
	if op == Store {
		s.Stores++
	} else {
		s.Loads++
	}
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
}

// ConfigError reports a model parameter that no model supports. It is
// only returned at construction time.
type ConfigError struct {
	Model string
	Param string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s for %s: %d", e.Param, e.Model, e.Value)
}
