package engine_test

import (
	"context"
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/spleeter-api/src/server/internal/engine"
	"github.com/veedubyou/spleeter-api/src/server/internal/engine/enginefakes"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"sync"
	"sync/atomic"
	"time"
)

var _ = Describe("Cache", func() {
	var (
		cache        *engine.Cache
		factoryCalls atomic.Int32
		factoryErr   error
		factoryDelay time.Duration
	)

	BeforeEach(func() {
		factoryCalls.Store(0)
		factoryErr = nil
		factoryDelay = 0
	})

	JustBeforeEach(func() {
		cache = engine.NewCache(func(_ context.Context, model stementity.Model) (engine.Separator, error) {
			factoryCalls.Add(1)
			time.Sleep(factoryDelay)

			if factoryErr != nil {
				return nil, factoryErr
			}

			return &enginefakes.FakeSeparator{}, nil
		})
	})

	It("starts with nothing loaded", func() {
		Expect(cache.Loaded()).To(BeEmpty())
	})

	Describe("Sequential gets", func() {
		It("constructs a model once and hands back the same instance", func() {
			first, err := cache.Get(context.Background(), stementity.FourStemsModel)
			Expect(err).NotTo(HaveOccurred())

			second, err := cache.Get(context.Background(), stementity.FourStemsModel)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(BeIdenticalTo(first))
			Expect(factoryCalls.Load()).To(BeEquivalentTo(1))
		})

		It("keeps one instance per model", func() {
			two, err := cache.Get(context.Background(), stementity.TwoStemsModel)
			Expect(err).NotTo(HaveOccurred())

			five, err := cache.Get(context.Background(), stementity.FiveStemsModel)
			Expect(err).NotTo(HaveOccurred())

			Expect(two).NotTo(BeIdenticalTo(five))
			Expect(factoryCalls.Load()).To(BeEquivalentTo(2))
		})

		It("reports loaded models sorted", func() {
			for _, model := range []stementity.Model{
				stementity.FiveStemsModel,
				stementity.TwoStemsModel,
				stementity.FourStemsModel,
			} {
				_, err := cache.Get(context.Background(), model)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(cache.Loaded()).To(Equal([]stementity.Model{
				stementity.TwoStemsModel,
				stementity.FourStemsModel,
				stementity.FiveStemsModel,
			}))
		})
	})

	Describe("Concurrent first gets", func() {
		BeforeEach(func() {
			factoryDelay = 50 * time.Millisecond
		})

		It("constructs the model only once", func() {
			const callers = 16

			wg := sync.WaitGroup{}
			results := make([]engine.Separator, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()

					separator, err := cache.Get(context.Background(), stementity.TwoStemsModel)
					Expect(err).NotTo(HaveOccurred())
					results[i] = separator
				}(i)
			}
			wg.Wait()

			Expect(factoryCalls.Load()).To(BeEquivalentTo(1))
			for _, separator := range results {
				Expect(separator).To(BeIdenticalTo(results[0]))
			}
		})
	})

	Describe("When construction fails", func() {
		BeforeEach(func() {
			factoryErr = errors.New("no spleeter here")
		})

		It("returns the error", func() {
			_, err := cache.Get(context.Background(), stementity.FourStemsModel)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no spleeter here"))
		})

		It("does not remember the failure", func() {
			_, err := cache.Get(context.Background(), stementity.FourStemsModel)
			Expect(err).To(HaveOccurred())

			_, err = cache.Get(context.Background(), stementity.FourStemsModel)
			Expect(err).To(HaveOccurred())

			Expect(factoryCalls.Load()).To(BeEquivalentTo(2))
			Expect(cache.Loaded()).To(BeEmpty())
		})
	})
})
