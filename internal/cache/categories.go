package cache

import (
	"fmt"
	"sync"

	"github.com/aurelab/aurelab-manager/internal/entity"
)

type categoryCache struct {
	mu     sync.RWMutex
	byID   map[int]entity.Category
	byName map[entity.CategoryEnum]entity.Category
}

func newCategoryCache(categories []entity.Category) (*categoryCache, error) {
	cc := &categoryCache{
		byID:   make(map[int]entity.Category, len(categories)),
		byName: make(map[entity.CategoryEnum]entity.Category, len(categories)),
	}
	for _, c := range categories {
		if !entity.ValidCategories[c.Name] {
			return nil, fmt.Errorf("unknown category in dictionary: %s", c.Name)
		}
		cc.byID[c.ID] = c
		cc.byName[c.Name] = c
	}
	return cc, nil
}

func (cc *categoryCache) getByID(id int) (*entity.Category, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	c, ok := cc.byID[id]
	if !ok {
		return nil, false
	}
	return &c, true
}

func (cc *categoryCache) getByName(name entity.CategoryEnum) (entity.Category, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	c, ok := cc.byName[name]
	return c, ok
}

func (cc *categoryCache) all() []entity.Category {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	out := make([]entity.Category, 0, len(cc.byID))
	for _, c := range cc.byID {
		out = append(out, c)
	}
	return out
}
