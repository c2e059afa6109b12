package sim_test

import (
	"context"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

func randomTrace(seed int64, n int) []trace.Record {
	rng := rand.New(rand.NewSource(seed))
	records := make([]trace.Record, n)
	for i := range records {
		addr := uint32(rng.Intn(64 * 1024))
		if rng.Intn(8) == 0 {
			addr = rng.Uint32()
		}
		records[i] = trace.Record{Op: cache.Op(rng.Intn(2)), Addr: addr}
	}
	return records
}

func names(s *sim.Suite) []string {
	var out []string
	for _, m := range s.Members() {
		out = append(out, m.Model.Name())
	}
	return out
}

var _ = Describe("Suite", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewSuite", func() {
		It("should build the classic models in report order", func() {
			s, err := sim.NewSuite(config.DefaultSimConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(names(s)).To(Equal([]string{
				"dm-1KB", "dm-4KB", "dm-16KB", "dm-32KB",
				"sa-2way", "sa-4way", "sa-8way", "sa-16way",
				"fa-lru",
				"fa-plru",
				"noalloc-2way", "noalloc-4way", "noalloc-8way", "noalloc-16way",
				"prefetch-2way", "prefetch-4way", "prefetch-8way", "prefetch-16way",
				"onmiss-2way", "onmiss-4way", "onmiss-8way", "onmiss-16way",
			}))
		})

		It("should use directory models with the directory engine", func() {
			cfg := config.DefaultSimConfig()
			cfg.Engine = config.EngineDirectory
			s, err := sim.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, name := range names(s) {
				if name == "fa-plru" {
					continue
				}
				Expect(name).To(HavePrefix("dir-"))
			}
			Expect(s.Members()).To(HaveLen(22))
		})

		It("should place the set-associative family before the fully-associative models", func() {
			cfg := config.DefaultSimConfig()
			cfg.DirectMappedSizesKB = nil
			cfg.SetAssociativeWays = []int{4}
			cfg.Policies = []string{config.PolicyPrefetch, config.PolicySetAssociative}
			s, err := sim.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(s)).To(Equal([]string{"sa-4way", "fa-lru", "fa-plru", "prefetch-4way"}))
		})

		It("should reject an invalid configuration", func() {
			cfg := config.DefaultSimConfig()
			cfg.SetAssociativeWays = []int{5}
			_, err := sim.NewSuite(cfg)
			Expect(err).To(MatchError(ContainSubstring("invalid sim config")))
		})
	})

	It("should count one hit in three references for 0x0, 0x20, 0x0", func() {
		s, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())

		r := trace.NewReader(strings.NewReader("L 0x00000000\nL 0x00000020\nL 0x00000000\n"))
		Expect(s.Run(ctx, r)).To(Succeed())

		results := s.Results()
		Expect(results[0].Name).To(Equal("dm-1KB"))
		Expect(results[0].Hits).To(Equal(uint64(1)))
		Expect(results[0].Total).To(Equal(uint64(3)))
		Expect(s.Records()).To(Equal(uint64(3)))
	})

	It("should report the same total for every model and never more hits", func() {
		s, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.RunRecords(ctx, randomTrace(7, 5000))).To(Succeed())

		for _, r := range s.Results() {
			Expect(r.Total).To(Equal(uint64(5000)))
			Expect(r.Stats.Accesses).To(Equal(r.Total))
			Expect(r.Hits).To(BeNumerically("<=", r.Total))
			Expect(r.HitRate()).To(BeNumerically("<=", 1.0))
		}
	})

	for _, engine := range []string{config.EngineList, config.EngineDirectory} {
		engine := engine
		It("should produce identical results serially and in parallel", func() {
			records := randomTrace(11, 8000)

			cfg := config.DefaultSimConfig()
			cfg.Engine = engine
			serial, err := sim.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(serial.RunRecords(ctx, records)).To(Succeed())

			cfg.Parallel = true
			parallel, err := sim.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(parallel.RunRecords(ctx, records)).To(Succeed())

			Expect(parallel.Results()).To(Equal(serial.Results()))
		})
	}

	It("should give the same results with either engine", func() {
		records := randomTrace(13, 8000)

		list, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(list.RunRecords(ctx, records)).To(Succeed())

		cfg := config.DefaultSimConfig()
		cfg.Engine = config.EngineDirectory
		dir, err := sim.NewSuite(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir.RunRecords(ctx, records)).To(Succeed())

		listResults, dirResults := list.Results(), dir.Results()
		Expect(dirResults).To(HaveLen(len(listResults)))
		for i := range listResults {
			Expect(dirResults[i].Hits).To(Equal(listResults[i].Hits), listResults[i].Name)
		}
	})

	It("should read the whole source in parallel mode", func() {
		cfg := config.DefaultSimConfig()
		cfg.Parallel = true
		s, err := sim.NewSuite(cfg)
		Expect(err).NotTo(HaveOccurred())

		r := trace.NewReader(strings.NewReader("L 0x0\nS 0x20\nL 0x0\n"))
		Expect(s.Run(ctx, r)).To(Succeed())
		Expect(s.Results()[0].Hits).To(Equal(uint64(1)))
		Expect(s.Records()).To(Equal(uint64(3)))
	})

	It("should stop on a malformed record", func() {
		s, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())

		r := trace.NewReader(strings.NewReader("L 0x0\nL 0x1ffffffff\n"))
		err = s.Run(ctx, r)

		var parseErr *trace.ParseError
		Expect(err).To(BeAssignableToTypeOf(parseErr))
		Expect(s.Records()).To(Equal(uint64(1)))
	})

	It("should stop when the context is canceled", func() {
		s, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		Expect(s.RunRecords(canceled, randomTrace(1, 10))).To(MatchError(context.Canceled))

		s.SetParallel(true)
		Expect(s.RunRecords(canceled, randomTrace(1, 10))).To(MatchError(context.Canceled))
	})

	Describe("With mock models", func() {
		var (
			mockCtrl *gomock.Controller
			model    *MockModel
			suite    *sim.Suite
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			model = NewMockModel(mockCtrl)
			suite = sim.NewSuiteFromMembers([]sim.Member{
				{Family: "mock", Param: 1, Model: model},
			})
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should feed every record to the model in trace order", func() {
			gomock.InOrder(
				model.EXPECT().Access(cache.Load, uint32(0x100)).Return(false),
				model.EXPECT().Access(cache.Store, uint32(0x100)).Return(true),
				model.EXPECT().Access(cache.Load, uint32(0x200)).Return(false),
			)

			r := trace.NewReader(strings.NewReader("L 0x100\nS 0x100\nL 0x200\n"))
			Expect(suite.Run(ctx, r)).To(Succeed())
		})

		It("should read counters from the model", func() {
			model.EXPECT().Access(gomock.Any(), gomock.Any()).Return(true).Times(2)
			model.EXPECT().Name().Return("mock-1")
			model.EXPECT().Stats().Return(cache.Statistics{Accesses: 2, Hits: 2})

			suite.Access(trace.Record{Op: cache.Load, Addr: 0})
			suite.Access(trace.Record{Op: cache.Load, Addr: 0})

			results := suite.Results()
			Expect(results).To(Equal([]sim.Result{{
				Family: "mock",
				Name:   "mock-1",
				Param:  1,
				Hits:   2,
				Total:  2,
				Stats:  cache.Statistics{Accesses: 2, Hits: 2},
			}}))
		})
	})

	It("should group results by family", func() {
		s, err := sim.NewSuite(config.DefaultSimConfig())
		Expect(err).NotTo(HaveOccurred())

		groups := sim.GroupByFamily(s.Results())
		Expect(groups).To(HaveLen(7))
		Expect(groups[0]).To(HaveLen(4))
		Expect(groups[2][0].Family).To(Equal(sim.FamilyFullyAssociativeLRU))
		Expect(groups[3][0].Family).To(Equal(sim.FamilyFullyAssociativePLRU))
		Expect(groups[6][0].Family).To(Equal(config.PolicyPrefetchOnMiss))
	})
})
