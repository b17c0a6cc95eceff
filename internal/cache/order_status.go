package cache

import (
	"fmt"
	"sync"

	"github.com/aurelab/aurelab-manager/internal/entity"
)

type orderStatusCache struct {
	mu     sync.RWMutex
	byID   map[int]entity.OrderStatus
	byName map[entity.OrderStatusName]entity.OrderStatus
}

func newOrderStatusCache(statuses []entity.OrderStatus) (*orderStatusCache, error) {
	osc := &orderStatusCache{
		byID:   make(map[int]entity.OrderStatus, len(statuses)),
		byName: make(map[entity.OrderStatusName]entity.OrderStatus, len(statuses)),
	}
	for _, s := range statuses {
		if !entity.ValidOrderStatusNames[s.Name] {
			return nil, fmt.Errorf("unknown order status in dictionary: %s", s.Name)
		}
		osc.byID[s.ID] = s
		osc.byName[s.Name] = s
	}
	return osc, nil
}

func (osc *orderStatusCache) getByID(id int) (*entity.OrderStatus, bool) {
	osc.mu.RLock()
	defer osc.mu.RUnlock()
	s, ok := osc.byID[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (osc *orderStatusCache) getByName(name entity.OrderStatusName) (entity.OrderStatus, bool) {
	osc.mu.RLock()
	defer osc.mu.RUnlock()
	s, ok := osc.byName[name]
	return s, ok
}

func (osc *orderStatusCache) all() []entity.OrderStatus {
	osc.mu.RLock()
	defer osc.mu.RUnlock()
	out := make([]entity.OrderStatus, 0, len(osc.byID))
	for _, s := range osc.byID {
		out = append(out, s)
	}
	return out
}
