package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
)

type customerStore struct {
	*MYSQLStore
}

// Customers returns an object implementing customers interface
func (ms *MYSQLStore) Customers() dependency.Customers {
	return &customerStore{
		MYSQLStore: ms,
	}
}

// ListCustomers groups buyers by email. Name fields come from the most
// recent order, lifetime value excludes cancelled orders.
func (ms *MYSQLStore) ListCustomers(ctx context.Context, limit, offset int) ([]entity.Customer, int, error) {
	count, err := QueryCountNamed(ctx, ms.DB(),
		`SELECT COUNT(DISTINCT email) FROM buyer`, map[string]any{})
	if err != nil {
		return nil, 0, fmt.Errorf("can't count customers: %w", err)
	}

	customers, err := QueryListNamed[entity.Customer](ctx, ms.DB(), `
		SELECT
			b.email,
			SUBSTRING_INDEX(GROUP_CONCAT(b.first_name ORDER BY co.placed DESC), ',', 1) AS first_name,
			SUBSTRING_INDEX(GROUP_CONCAT(b.last_name ORDER BY co.placed DESC), ',', 1) AS last_name,
			COUNT(*) AS orders_count,
			COALESCE(SUM(CASE WHEN os.name != 'cancelled' THEN co.total_price ELSE 0 END), 0) AS lifetime_value
		FROM buyer b
		JOIN customer_order co ON b.order_id = co.id
		JOIN order_status os ON co.order_status_id = os.id
		GROUP BY b.email
		ORDER BY lifetime_value DESC
		LIMIT :limit OFFSET :offset`,
		map[string]any{"limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("can't list customers: %w", err)
	}
	return customers, count, nil
}

func (ms *MYSQLStore) GetCustomerOrders(ctx context.Context, email string, limit, offset int) ([]entity.Order, error) {
	orders, err := QueryListNamed[entity.Order](ctx, ms.DB(), `
		SELECT co.id, co.uuid, co.reference, co.placed, co.modified, co.order_status_id,
			co.subtotal, co.shipping_cost, co.tax_amount, co.total_price, co.delivery_confirmed
		FROM customer_order co
		JOIN buyer b ON co.id = b.order_id
		WHERE b.email = :email
		ORDER BY co.placed DESC
		LIMIT :limit OFFSET :offset`,
		map[string]any{
			"email":  strings.ToLower(email),
			"limit":  limit,
			"offset": offset,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get customer orders: %w", err)
	}
	return orders, nil
}
