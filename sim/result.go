package sim

import "github.com/sarchlab/cachesim/cache"

// Result is the outcome of one model over the whole trace.
type Result struct {
	Family string
	Name   string
	Param  int
	// Hits is the number of references that hit.
	Hits uint64
	// Total is the number of references, identical for every model.
	Total uint64
	Stats cache.Statistics
}

// HitRate returns Hits/Total, or 0 for an empty trace.
func (r Result) HitRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Total)
}

// Results returns the outcome of every member in report order.
func (s *Suite) Results() []Result {
	results := make([]Result, 0, len(s.members))
	for _, m := range s.members {
		stats := m.Model.Stats()
		results = append(results, Result{
			Family: m.Family,
			Name:   m.Model.Name(),
			Param:  m.Param,
			Hits:   stats.Hits,
			Total:  s.records,
			Stats:  stats,
		})
	}
	return results
}

// GroupByFamily splits results into runs of consecutive results that share
// a family.
func GroupByFamily(results []Result) [][]Result {
	var groups [][]Result
	for i, r := range results {
		if i == 0 || r.Family != results[i-1].Family {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], r)
	}
	return groups
}
