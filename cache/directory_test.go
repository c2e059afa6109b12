package cache_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

type reference struct {
	op   cache.Op
	addr uint32
}

// localTrace mixes a hot region, a sequential stream and random far
// references so that every model sees hits, conflicts and evictions.
func localTrace(seed int64, n int) []reference {
	rng := rand.New(rand.NewSource(seed))
	refs := make([]reference, 0, n)
	stream := uint32(0x40000000)

	for i := 0; i < n; i++ {
		op := cache.Load
		if rng.Intn(4) == 0 {
			op = cache.Store
		}

		var addr uint32
		switch rng.Intn(3) {
		case 0:
			addr = uint32(rng.Intn(24*1024)) &^ 3
		case 1:
			addr = stream
			stream += 16
		default:
			addr = rng.Uint32()
		}
		refs = append(refs, reference{op: op, addr: addr})
	}

	return refs
}

var _ = Describe("DirectoryCache", func() {
	It("should validate its geometry", func() {
		Expect(cache.SetAssociativeConfig(4).NumSets()).To(Equal(128))
		Expect(cache.FullyAssociativeConfig().NumSets()).To(Equal(1))
		Expect(cache.DirectMappedConfig(32).NumSets()).To(Equal(1024))

		_, err := cache.NewDirectoryCache(cache.Config{Size: 3000, Associativity: 2, BlockSize: 32}, cache.PolicyLRU)
		Expect(err).To(HaveOccurred())
		_, err = cache.NewDirectoryCache(cache.Config{Size: 1024 * 3, Associativity: 1, BlockSize: 32}, cache.PolicyLRU)
		Expect(err).To(HaveOccurred())
		_, err = cache.NewDirectoryCache(cache.Config{Size: 1024, Associativity: 1, BlockSize: 24}, cache.PolicyLRU)
		Expect(err).To(HaveOccurred())
	})

	It("should miss, miss, then hit on 0x0, 0x20, 0x0", func() {
		c, err := cache.NewDirectoryCache(cache.DirectMappedConfig(1), cache.PolicyLRU)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("dir-dm-1KB"))

		Expect(c.Access(cache.Load, 0x00)).To(BeFalse())
		Expect(c.Access(cache.Load, 0x20)).To(BeFalse())
		Expect(c.Access(cache.Load, 0x00)).To(BeTrue())
		Expect(c.Resident()).To(Equal(2))
	})

	It("should skip allocation on a store miss with the no-allocate policy", func() {
		c, err := cache.NewDirectoryCache(cache.SetAssociativeConfig(4), cache.PolicyNoAllocate)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("dir-noalloc-4way"))

		c.Access(cache.Store, 0x4000)
		Expect(c.Contains(0x4000)).To(BeFalse())
		Expect(c.Access(cache.Load, 0x4000)).To(BeFalse())
		Expect(c.Contains(0x4000)).To(BeTrue())
	})

	It("should prefetch across the top of the address space", func() {
		c, err := cache.NewDirectoryCache(cache.SetAssociativeConfig(2), cache.PolicyPrefetch)
		Expect(err).NotTo(HaveOccurred())

		c.Access(cache.Load, 0xFFFFFFE0)
		Expect(c.Stats().PrefetchFills).To(Equal(uint64(1)))
		// The prefetched line is past 4GB, so 0x0 is still cold
		Expect(c.Access(cache.Load, 0x0)).To(BeFalse())
	})

	Describe("Agreement with the list-based models", func() {
		refs := localTrace(42, 20000)

		check := func(list, dir cache.Model) {
			for i, r := range refs {
				Expect(dir.Access(r.op, r.addr)).To(Equal(list.Access(r.op, r.addr)),
					"reference %d (%s 0x%08x)", i, r.op, r.addr)
			}
			Expect(dir.Stats()).To(Equal(list.Stats()))
		}

		for _, sizeKB := range cache.DirectMappedSizesKB {
			sizeKB := sizeKB
			It("should agree for a direct-mapped cache", func() {
				list, err := cache.NewDirectMapped(sizeKB)
				Expect(err).NotTo(HaveOccurred())
				dir, err := cache.NewDirectoryCache(cache.DirectMappedConfig(sizeKB), cache.PolicyLRU)
				Expect(err).NotTo(HaveOccurred())
				check(list, dir)
			})
		}

		policies := []cache.Policy{
			cache.PolicyLRU,
			cache.PolicyNoAllocate,
			cache.PolicyPrefetch,
			cache.PolicyPrefetchOnMiss,
		}
		for _, policy := range policies {
			for _, ways := range cache.SetAssociativeWays {
				policy, ways := policy, ways
				It("should agree for a set-associative cache", func() {
					list, err := cache.NewSetAssociative(ways, policy)
					Expect(err).NotTo(HaveOccurred())
					dir, err := cache.NewDirectoryCache(cache.SetAssociativeConfig(ways), policy)
					Expect(err).NotTo(HaveOccurred())
					check(list, dir)
				})
			}
		}

		It("should agree for the fully-associative cache", func() {
			dir, err := cache.NewDirectoryCache(cache.FullyAssociativeConfig(), cache.PolicyLRU)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir.Name()).To(Equal("dir-fa-lru"))
			check(cache.NewFullyAssociativeLRU(), dir)
		})
	})
})
