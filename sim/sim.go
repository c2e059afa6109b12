// Package sim drives a set of cache models over a memory reference trace.
package sim

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/trace"
)

// Families of models that are not set-associative policies.
const (
	FamilyDirectMapped         = "direct_mapped"
	FamilyFullyAssociativeLRU  = "fully_associative_lru"
	FamilyFullyAssociativePLRU = "fully_associative_plru"
)

// cancelCheckInterval is the number of records between context checks.
const cancelCheckInterval = 4096

// Member is one model of a suite together with its place in the report.
type Member struct {
	// Family groups models that share one algorithm and policy.
	Family string
	// Param is the cache size in KB for direct-mapped models and the
	// associativity for the others.
	Param int
	// Model is the cache being simulated.
	Model cache.Model
}

// Source yields trace records until io.EOF.
type Source interface {
	Next() (trace.Record, error)
}

// Suite replays every record of a trace through each of its members. The
// members share no state.
type Suite struct {
	members  []Member
	parallel bool
	records  uint64
	elapsed  time.Duration
}

// NewSuite builds the models selected by cfg.
func NewSuite(cfg *config.SimConfig) (*Suite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sim config: %w", err)
	}

	b := builder{engine: cfg.Engine}
	for _, sizeKB := range cfg.DirectMappedSizesKB {
		b.directMapped(sizeKB)
	}

	if slices.Contains(cfg.Policies, config.PolicySetAssociative) {
		b.setAssociative(config.PolicySetAssociative, cfg.SetAssociativeWays)
	}
	if cfg.FullyAssociativeLRU {
		b.fullyAssociativeLRU()
	}
	if cfg.FullyAssociativePLRU {
		b.add(FamilyFullyAssociativePLRU, cache.PseudoLRUDepth, cache.NewPseudoLRU(), nil)
	}
	for _, name := range cfg.Policies {
		if name != config.PolicySetAssociative {
			b.setAssociative(name, cfg.SetAssociativeWays)
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	s := NewSuiteFromMembers(b.members)
	s.parallel = cfg.Parallel

	return s, nil
}

// NewSuiteFromMembers creates a serial suite over already built models.
func NewSuiteFromMembers(members []Member) *Suite {
	return &Suite{members: members}
}

// SetParallel selects whether RunRecords uses one goroutine per model.
func (s *Suite) SetParallel(parallel bool) {
	s.parallel = parallel
}

// Members returns the members in report order.
func (s *Suite) Members() []Member {
	return s.members
}

// Records returns the number of records replayed so far.
func (s *Suite) Records() uint64 {
	return s.records
}

// Elapsed returns the wall time spent replaying.
func (s *Suite) Elapsed() time.Duration {
	return s.elapsed
}

// Access applies one record to every member.
func (s *Suite) Access(rec trace.Record) {
	for _, m := range s.members {
		m.Model.Access(rec.Op, rec.Addr)
	}
	s.records++
}

// Run replays every record of src. In parallel mode the trace is read
// into memory first.
func (s *Suite) Run(ctx context.Context, src Source) error {
	if s.parallel {
		records, err := drain(src)
		if err != nil {
			return err
		}
		return s.RunRecords(ctx, records)
	}

	start := time.Now()
	defer func() { s.elapsed += time.Since(start) }()

	s.logStart()
	for {
		if s.records%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.Access(rec)
	}
	s.logFinish(start)

	return nil
}

// RunRecords replays records already in memory.
func (s *Suite) RunRecords(ctx context.Context, records []trace.Record) error {
	start := time.Now()
	defer func() { s.elapsed += time.Since(start) }()

	s.logStart()
	if !s.parallel {
		for i, rec := range records {
			if i%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			s.Access(rec)
		}
		s.logFinish(start)
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range s.members {
		model := m.Model
		g.Go(func() error {
			for i, rec := range records {
				if i%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				model.Access(rec.Op, rec.Addr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.records += uint64(len(records))
	s.logFinish(start)

	return nil
}

func (s *Suite) logStart() {
	log.WithFields(log.Fields{
		"models":   len(s.members),
		"parallel": s.parallel,
	}).Info("starting cache simulation")
}

func (s *Suite) logFinish(start time.Time) {
	log.WithFields(log.Fields{
		"records": s.records,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("cache simulation finished")
}

func drain(src Source) ([]trace.Record, error) {
	var records []trace.Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
