package store

import (
	"context"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/entity"
)

// GetDictionaryInfo loads the immutable dictionary tables for cache init.
func (ms *MYSQLStore) GetDictionaryInfo(ctx context.Context) (*entity.Dict, error) {
	categories, err := QueryListNamed[entity.Category](ctx, ms.DB(),
		`SELECT id, name FROM category ORDER BY id`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get categories: %w", err)
	}

	statuses, err := QueryListNamed[entity.OrderStatus](ctx, ms.DB(),
		`SELECT id, name FROM order_status ORDER BY id`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get order statuses: %w", err)
	}

	return &entity.Dict{
		Categories:    categories,
		OrderStatuses: statuses,
	}, nil
}
