// Package report renders simulation results as text, JSON, Excel,
// Prometheus textfiles, SQLite tables and terminal tables.
package report

import (
	"math"
	"time"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/sim"
)

// Entry is the report line of one model.
type Entry struct {
	Family     string             `json:"family"`
	Name       string             `json:"name"`
	Param      int                `json:"param"`
	Hits       uint64             `json:"hits"`
	Total      uint64             `json:"total"`
	Misses     uint64             `json:"misses"`
	Loads      uint64             `json:"loads"`
	Stores     uint64             `json:"stores"`
	Evictions  uint64             `json:"evictions"`
	Prefetches uint64             `json:"prefetches"`
	HitRate    float64            `json:"hit_rate"`
	Derived    map[string]float64 `json:"derived,omitempty"`
}

// Report is the complete outcome of one run.
type Report struct {
	RunID    string        `json:"run_id"`
	Trace    string        `json:"trace,omitempty"`
	Engine   string        `json:"engine,omitempty"`
	Total    uint64        `json:"total"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Entries  []Entry       `json:"results"`
	Metrics  []string      `json:"derived_metrics,omitempty"`
	Families []Summary     `json:"families"`

	results []sim.Result
}

// New builds a report from simulation results and evaluates the derived
// metrics for every model.
func New(results []sim.Result, metrics []config.DerivedMetric) (*Report, error) {
	exprs := make([]*govaluate.EvaluableExpression, len(metrics))
	for i, m := range metrics {
		expr, err := govaluate.NewEvaluableExpression(m.Expression)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse derived metric %s", m.Name)
		}
		exprs[i] = expr
	}

	r := &Report{
		RunID:   xid.New().String(),
		results: results,
	}
	for _, m := range metrics {
		r.Metrics = append(r.Metrics, m.Name)
	}

	for _, res := range results {
		e := newEntry(res)
		if len(exprs) > 0 {
			e.Derived = make(map[string]float64, len(exprs))
		}
		for i, expr := range exprs {
			v, err := evaluate(expr, e)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to evaluate %s for %s", metrics[i].Name, e.Name)
			}
			e.Derived[metrics[i].Name] = v
		}

		r.Entries = append(r.Entries, e)
		r.Total = res.Total
	}
	r.Families = summarize(r.Entries)

	return r, nil
}

// Results returns the simulation results the report was built from.
func (r *Report) Results() []sim.Result {
	return r.results
}

func newEntry(res sim.Result) Entry {
	return Entry{
		Family:     res.Family,
		Name:       res.Name,
		Param:      res.Param,
		Hits:       res.Hits,
		Total:      res.Total,
		Misses:     res.Stats.Misses,
		Loads:      res.Stats.Loads,
		Stores:     res.Stats.Stores,
		Evictions:  res.Stats.Evictions,
		Prefetches: res.Stats.Prefetches,
		HitRate:    res.HitRate(),
	}
}

// evaluate computes expr over the counters of e. Results that are not
// finite, e.g. from an empty trace, are reported as 0.
func evaluate(expr *govaluate.EvaluableExpression, e Entry) (float64, error) {
	params := map[string]interface{}{
		"hits":       float64(e.Hits),
		"misses":     float64(e.Misses),
		"total":      float64(e.Total),
		"loads":      float64(e.Loads),
		"stores":     float64(e.Stores),
		"evictions":  float64(e.Evictions),
		"prefetches": float64(e.Prefetches),
		"param":      float64(e.Param),
	}

	out, err := expr.Evaluate(params)
	if err != nil {
		return 0, err
	}

	var v float64
	switch val := out.(type) {
	case float64:
		v = val
	case bool:
		if val {
			v = 1
		}
	default:
		return 0, errors.Errorf("expression returned %T, not a number", out)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nil
	}
	return v, nil
}
