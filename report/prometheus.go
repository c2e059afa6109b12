package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry returns a registry holding per-model gauges of the report.
func Registry(r *Report) (*prometheus.Registry, error) {
	labels := []string{"family", "model"}
	hits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cachesim",
		Name:      "hits",
		Help:      "Number of references that hit.",
	}, labels)
	total := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cachesim",
		Name:      "references",
		Help:      "Number of references replayed.",
	}, labels)
	rate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cachesim",
		Name:      "hit_rate",
		Help:      "Fraction of references that hit.",
	}, labels)
	evictions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cachesim",
		Name:      "evictions",
		Help:      "Number of valid lines replaced.",
	}, labels)

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{hits, total, rate, evictions} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register gauge")
		}
	}

	for _, e := range r.Entries {
		hits.WithLabelValues(e.Family, e.Name).Set(float64(e.Hits))
		total.WithLabelValues(e.Family, e.Name).Set(float64(e.Total))
		rate.WithLabelValues(e.Family, e.Name).Set(e.HitRate)
		evictions.WithLabelValues(e.Family, e.Name).Set(float64(e.Evictions))
	}

	return reg, nil
}

// WritePrometheus writes the report gauges to a node-exporter textfile.
func WritePrometheus(path string, r *Report) error {
	reg, err := Registry(r)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
