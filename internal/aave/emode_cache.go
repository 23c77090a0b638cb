package aave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"reserveScope/internal/model"
)

// ErrNoCategory is returned for category id 0, which means "no e-mode category".
var ErrNoCategory = errors.New("e-mode category 0 is not a category")

// CategoryReader queries e-mode category parameters.
type CategoryReader interface {
	EModeCategory(ctx context.Context, id uint8) (model.EModeCategoryData, error)
}

// EModeCategoryCache memoizes category lookups for the lifetime of its owner.
// Entries are never invalidated. Concurrent misses for one id may both reach
// the reader; the last write wins.
type EModeCategoryCache struct {
	reader CategoryReader

	mu   sync.RWMutex
	data map[uint8]model.EModeCategoryData
}

func NewEModeCategoryCache(reader CategoryReader) *EModeCategoryCache {
	return &EModeCategoryCache{reader: reader, data: make(map[uint8]model.EModeCategoryData)}
}

// Get returns category id, querying the reader on a miss. Failed lookups are not stored.
func (c *EModeCategoryCache) Get(ctx context.Context, id uint8) (model.EModeCategoryData, error) {
	if id == 0 {
		return model.EModeCategoryData{}, ErrNoCategory
	}

	c.mu.RLock()
	category, ok := c.data[id]
	c.mu.RUnlock()
	if ok {
		return category, nil
	}

	if c.reader == nil {
		return model.EModeCategoryData{}, fmt.Errorf("e-mode category %d: no category reader", id)
	}
	category, err := c.reader.EModeCategory(ctx, id)
	if err != nil {
		return model.EModeCategoryData{}, fmt.Errorf("e-mode category %d: %w", id, err)
	}
	category.ID = id

	c.mu.Lock()
	c.data[id] = category
	c.mu.Unlock()
	return category, nil
}

func (c *EModeCategoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Snapshot returns the resolved categories ordered by id.
func (c *EModeCategoryCache) Snapshot() []model.EModeCategoryData {
	c.mu.RLock()
	out := make([]model.EModeCategoryData, 0, len(c.data))
	for _, category := range c.data {
		out = append(out, category)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
