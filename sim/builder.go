package sim

import (
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
)

// builder collects members and keeps the first construction error.
type builder struct {
	engine  string
	members []Member
	err     error
}

func (b *builder) add(family string, param int, model cache.Model, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}

	log.WithFields(log.Fields{
		"family": family,
		"model":  model.Name(),
	}).Debug("built cache model")

	b.members = append(b.members, Member{Family: family, Param: param, Model: model})
}

func (b *builder) directMapped(sizeKB int) {
	if b.engine == config.EngineDirectory {
		m, err := cache.NewDirectoryCache(cache.DirectMappedConfig(sizeKB), cache.PolicyLRU)
		b.add(FamilyDirectMapped, sizeKB, modelOrNil(m, err), err)
		return
	}

	m, err := cache.NewDirectMapped(sizeKB)
	b.add(FamilyDirectMapped, sizeKB, modelOrNil(m, err), err)
}

func (b *builder) setAssociative(family string, ways []int) {
	policy := config.Policies[family]
	for _, w := range ways {
		if b.engine == config.EngineDirectory {
			m, err := cache.NewDirectoryCache(cache.SetAssociativeConfig(w), policy)
			b.add(family, w, modelOrNil(m, err), err)
			continue
		}

		m, err := cache.NewSetAssociative(w, policy)
		b.add(family, w, modelOrNil(m, err), err)
	}
}

func (b *builder) fullyAssociativeLRU() {
	if b.engine == config.EngineDirectory {
		m, err := cache.NewDirectoryCache(cache.FullyAssociativeConfig(), cache.PolicyLRU)
		b.add(FamilyFullyAssociativeLRU, cache.SetAssociativeLines, modelOrNil(m, err), err)
		return
	}

	b.add(FamilyFullyAssociativeLRU, cache.SetAssociativeLines, cache.NewFullyAssociativeLRU(), nil)
}

// modelOrNil avoids wrapping a nil pointer in a non-nil interface.
func modelOrNil[T cache.Model](m T, err error) cache.Model {
	if err != nil {
		return nil
	}
	return m
}
