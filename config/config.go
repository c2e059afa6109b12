// Package config defines which cache models a simulation run builds.
package config

import (
	"fmt"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v2"

	"github.com/sarchlab/cachesim/cache"
)

// Engines that can back the direct-mapped, set-associative and
// fully-associative LRU models.
const (
	// EngineList uses the MRU-ordered list models.
	EngineList = "list"
	// EngineDirectory uses the Akita cache directory models.
	EngineDirectory = "directory"
)

// Names of the set-associative policy families.
const (
	PolicySetAssociative = "set_associative"
	PolicyNoAllocate     = "no_allocate"
	PolicyPrefetch       = "prefetch"
	PolicyPrefetchOnMiss = "prefetch_on_miss"
)

// Policies maps family names to set-associative policies.
var Policies = map[string]cache.Policy{
	PolicySetAssociative: cache.PolicyLRU,
	PolicyNoAllocate:     cache.PolicyNoAllocate,
	PolicyPrefetch:       cache.PolicyPrefetch,
	PolicyPrefetchOnMiss: cache.PolicyPrefetchOnMiss,
}

// DerivedMetric is a value computed from the counters of each model.
type DerivedMetric struct {
	// Name of the metric, e.g. "miss_rate".
	Name string `yaml:"name"`
	// Expression over hits, misses, total, loads, stores, evictions and
	// prefetches, e.g. "misses / total".
	Expression string `yaml:"expression"`
}

// SimConfig selects the models of a run.
type SimConfig struct {
	// DirectMappedSizesKB lists one direct-mapped cache per size.
	// Supported: 1, 4, 16, 32.
	DirectMappedSizesKB []int `yaml:"direct_mapped_sizes_kb"`

	// SetAssociativeWays lists the associativities built for each policy.
	// Supported: 2, 4, 8, 16.
	SetAssociativeWays []int `yaml:"set_associative_ways"`

	// Policies lists the set-associative families, in output order.
	// The set_associative family is reported before the fully-associative
	// models and the others after them.
	Policies []string `yaml:"policies"`

	// FullyAssociativeLRU enables the 512-line LRU cache.
	FullyAssociativeLRU bool `yaml:"fully_associative_lru"`

	// FullyAssociativePLRU enables the 512-leaf hot/cold cache.
	FullyAssociativePLRU bool `yaml:"fully_associative_plru"`

	// Engine is "list" or "directory". The hot/cold cache always uses its
	// own tree.
	Engine string `yaml:"engine"`

	// Parallel replays the trace through each model on its own goroutine.
	Parallel bool `yaml:"parallel"`

	// DerivedMetrics are evaluated for every model after the run.
	DerivedMetrics []DerivedMetric `yaml:"derived_metrics"`
}

// DefaultSimConfig returns the configuration with all 22 models of the
// classic experiment.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		DirectMappedSizesKB: []int{1, 4, 16, 32},
		SetAssociativeWays:  []int{2, 4, 8, 16},
		Policies: []string{
			PolicySetAssociative,
			PolicyNoAllocate,
			PolicyPrefetch,
			PolicyPrefetchOnMiss,
		},
		FullyAssociativeLRU:  true,
		FullyAssociativePLRU: true,
		Engine:               EngineList,
		DerivedMetrics: []DerivedMetric{
			{Name: "hit_rate", Expression: "hits / total"},
			{Name: "miss_rate", Expression: "misses / total"},
		},
	}
}

// LoadConfig loads a SimConfig from a YAML or JSON file. Fields missing
// from the file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	return config, nil
}

// Marshal serializes the config as YAML.
func (c *SimConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sim config: %w", err)
	}
	return data, nil
}

// SaveConfig writes a SimConfig to a YAML file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// Validate checks that every requested model is supported and requested
// only once.
func (c *SimConfig) Validate() error {
	if err := checkValues("direct_mapped_sizes_kb", c.DirectMappedSizesKB,
		mapset.NewSet(cache.DirectMappedSizesKB...)); err != nil {
		return err
	}
	if err := checkValues("set_associative_ways", c.SetAssociativeWays,
		mapset.NewSet(cache.SetAssociativeWays...)); err != nil {
		return err
	}

	seen := mapset.NewSet[string]()
	for _, name := range c.Policies {
		if _, ok := Policies[name]; !ok {
			return fmt.Errorf("policies: unknown policy %q (supported: %v)", name, PolicyNames())
		}
		if !seen.Add(name) {
			return fmt.Errorf("policies: %q listed twice", name)
		}
	}

	switch c.Engine {
	case EngineList, EngineDirectory:
	default:
		return fmt.Errorf("engine must be %q or %q, got %q", EngineList, EngineDirectory, c.Engine)
	}

	names := mapset.NewSet[string]()
	for _, m := range c.DerivedMetrics {
		if m.Name == "" || m.Expression == "" {
			return fmt.Errorf("derived_metrics: name and expression are required")
		}
		if !names.Add(m.Name) {
			return fmt.Errorf("derived_metrics: %q defined twice", m.Name)
		}
	}

	if c.ModelCount() == 0 {
		return fmt.Errorf("no cache models selected")
	}

	return nil
}

// ModelCount returns the number of models the config builds.
func (c *SimConfig) ModelCount() int {
	n := len(c.DirectMappedSizesKB) + len(c.SetAssociativeWays)*len(c.Policies)
	if c.FullyAssociativeLRU {
		n++
	}
	if c.FullyAssociativePLRU {
		n++
	}
	return n
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	clone.DirectMappedSizesKB = append([]int(nil), c.DirectMappedSizesKB...)
	clone.SetAssociativeWays = append([]int(nil), c.SetAssociativeWays...)
	clone.Policies = append([]string(nil), c.Policies...)
	clone.DerivedMetrics = append([]DerivedMetric(nil), c.DerivedMetrics...)
	return &clone
}

// PolicyNames returns the supported policy names, sorted.
func PolicyNames() []string {
	names := make([]string, 0, len(Policies))
	for name := range Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkValues(field string, values []int, supported mapset.Set[int]) error {
	seen := mapset.NewSet[int]()
	for _, v := range values {
		if !supported.Contains(v) {
			sorted := supported.ToSlice()
			sort.Ints(sorted)
			return fmt.Errorf("%s: %w (supported: %v)", field,
				&cache.ConfigError{Model: "sim config", Param: field, Value: v}, sorted)
		}
		if !seen.Add(v) {
			return fmt.Errorf("%s: %d listed twice", field, v)
		}
	}
	return nil
}
