package report

import (
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the hit rates of one family.
type Summary struct {
	Family      string  `json:"family"`
	Models      int     `json:"models"`
	MeanHitRate float64 `json:"mean_hit_rate"`
	StdHitRate  float64 `json:"std_hit_rate"`
	Best        string  `json:"best"`
}

// summarize groups entries by family in first-seen order.
func summarize(entries []Entry) []Summary {
	var order []string
	rates := make(map[string][]float64)
	best := make(map[string]Entry)

	for _, e := range entries {
		if _, ok := rates[e.Family]; !ok {
			order = append(order, e.Family)
		}
		rates[e.Family] = append(rates[e.Family], e.HitRate)
		if b, ok := best[e.Family]; !ok || e.Hits > b.Hits {
			best[e.Family] = e
		}
	}

	summaries := make([]Summary, 0, len(order))
	for _, family := range order {
		s := Summary{
			Family: family,
			Models: len(rates[family]),
			Best:   best[family].Name,
		}
		if s.Models > 1 {
			s.MeanHitRate, s.StdHitRate = stat.MeanStdDev(rates[family], nil)
		} else {
			s.MeanHitRate = rates[family][0]
		}
		summaries = append(summaries, s)
	}

	return summaries
}
