package cache

import (
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
)

type Cache struct {
	categories    *categoryCache
	orderStatuses *orderStatusCache
}

// NewCache initializes in-memory dictionary caches from the database rows.
// Rows with names outside the known enum sets fail init.
func NewCache(categories []entity.Category, orderStatuses []entity.OrderStatus) (dependency.Cache, error) {
	cc, err := newCategoryCache(categories)
	if err != nil {
		return nil, fmt.Errorf("can't init category cache: %w", err)
	}
	osc, err := newOrderStatusCache(orderStatuses)
	if err != nil {
		return nil, fmt.Errorf("can't init order status cache: %w", err)
	}
	return &Cache{
		categories:    cc,
		orderStatuses: osc,
	}, nil
}

func (c *Cache) GetCategoryByID(id int) (*entity.Category, bool) {
	return c.categories.getByID(id)
}

func (c *Cache) GetCategoryByName(category entity.CategoryEnum) (entity.Category, bool) {
	return c.categories.getByName(category)
}

func (c *Cache) GetOrderStatusByID(id int) (*entity.OrderStatus, bool) {
	return c.orderStatuses.getByID(id)
}

func (c *Cache) GetOrderStatusByName(orderStatus entity.OrderStatusName) (entity.OrderStatus, bool) {
	return c.orderStatuses.getByName(orderStatus)
}

func (c *Cache) GetDict() *entity.Dict {
	return &entity.Dict{
		Categories:    c.categories.all(),
		OrderStatuses: c.orderStatuses.all(),
	}
}
