package engine

import (
	"context"
	"github.com/apex/log"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"golang.org/x/sync/singleflight"
	"sort"
	"sync"
)

// Cache loads at most one Separator per model, concurrent first requests
// for the same model share a single construction. Entries are never evicted.
type Cache struct {
	factory Factory

	lock       sync.RWMutex
	separators map[stementity.Model]Separator
	loading    singleflight.Group
}

func NewCache(factory Factory) *Cache {
	return &Cache{
		factory:    factory,
		separators: map[stementity.Model]Separator{},
	}
}

func (c *Cache) lookup(model stementity.Model) (Separator, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	separator, ok := c.separators[model]
	return separator, ok
}

func (c *Cache) Get(ctx context.Context, model stementity.Model) (Separator, error) {
	if separator, ok := c.lookup(model); ok {
		return separator, nil
	}

	result, err, _ := c.loading.Do(string(model), func() (any, error) {
		if separator, ok := c.lookup(model); ok {
			return separator, nil
		}

		log.WithField("model", model).Info("Initializing separation model")

		separator, err := c.factory(ctx, model)
		if err != nil {
			return nil, err
		}

		c.lock.Lock()
		c.separators[model] = separator
		c.lock.Unlock()

		return separator, nil
	})

	if err != nil {
		return nil, cerr.Field("model", model).Wrap(err).Error("Failed to load separation model")
	}

	return result.(Separator), nil
}

func (c *Cache) Loaded() []stementity.Model {
	c.lock.RLock()
	defer c.lock.RUnlock()

	models := make([]stementity.Model, 0, len(c.separators))
	for model := range c.separators {
		models = append(models, model)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i] < models[j]
	})

	return models
}
