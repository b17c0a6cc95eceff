package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderStore struct {
	*MYSQLStore
}

// Order returns an object implementing order interface
func (ms *MYSQLStore) Order() dependency.Order {
	return &orderStore{
		MYSQLStore: ms,
	}
}

var (
	// flatShippingCost is charged on every order below the free shipping bar.
	flatShippingCost      = decimal.NewFromInt(15)
	freeShippingThreshold = decimal.NewFromInt(200)
)

// ValidStatusTransitions defines allowed status transitions.
// Key: current status, Value: slice of allowed next statuses
var ValidStatusTransitions = map[entity.OrderStatusName][]entity.OrderStatusName{
	entity.Pending: {
		entity.Processing,
		entity.Cancelled,
	},
	entity.Processing: {
		entity.Shipped,
		entity.Cancelled,
	},
	entity.Shipped: {
		entity.InTransit,
	},
	entity.InTransit: {
		entity.OutForDelivery,
	},
	entity.OutForDelivery: {
		entity.Delivered,
	},
	// Terminal states - no transitions allowed
	entity.Delivered: {},
	entity.Cancelled: {},
}

// isValidStatusTransition checks if transition from currentStatus to newStatus is allowed
func isValidStatusTransition(currentStatus, newStatus entity.OrderStatusName) bool {
	allowedTransitions, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}

	for _, allowed := range allowedTransitions {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// ValidateOrderItemsInsert checks requested items against the live catalog.
// Quantities above available stock are clamped, prices and costs refreshed
// from the product row, hidden and unknown products dropped.
func (ms *MYSQLStore) ValidateOrderItemsInsert(ctx context.Context, items []entity.OrderItemInsert) (*entity.OrderItemValidation, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no order items to validate")
	}

	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	prds, err := QueryListNamed[entity.Product](ctx, ms.DB(), `
		SELECT id, created_at, updated_at, name, slug, description, category_id,
			vendor_id, price, cost, stock, hidden
		FROM product
		WHERE id IN (:ids) AND hidden = false`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("can't get products for validation: %w", err)
	}

	prdById := make(map[int]entity.Product, len(prds))
	for _, p := range prds {
		prdById[p.ID] = p
	}

	validation := &entity.OrderItemValidation{}
	for _, it := range items {
		p, ok := prdById[it.ProductID]
		if !ok {
			validation.HasChanged = true
			continue
		}
		qty := it.Quantity
		if qty > p.Stock {
			qty = p.Stock
			validation.HasChanged = true
		}
		if qty <= 0 {
			validation.HasChanged = true
			continue
		}
		if !it.ProductPrice.Equal(p.Price) {
			validation.HasChanged = true
		}
		valid := entity.OrderItemInsert{
			ProductID:    p.ID,
			ProductPrice: p.Price,
			ProductCost:  p.Cost,
			Quantity:     qty,
		}
		validation.ValidItems = append(validation.ValidItems, valid)
		validation.Subtotal = validation.Subtotal.Add(valid.LineTotal())
	}

	return validation, nil
}

// CreateOrder validates the cart, snapshots product prices and costs into
// order items, reduces stock with an audit entry and creates the pending
// order, all in a single serializable transaction.
func (ms *MYSQLStore) CreateOrder(ctx context.Context, orderNew *entity.OrderNew) (*entity.OrderFull, error) {
	var orderFull *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		validation, err := rep.Order().ValidateOrderItemsInsert(ctx, orderNew.Items)
		if err != nil {
			return fmt.Errorf("can't validate order items: %w", err)
		}
		if len(validation.ValidItems) == 0 {
			return gerr.ErrInsufficientStock
		}

		pendingStatus, ok := rep.Cache().GetOrderStatusByName(entity.Pending)
		if !ok {
			return fmt.Errorf("pending order status not found in cache")
		}

		subtotal := validation.SubtotalDecimal()
		shipping := flatShippingCost
		if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
			shipping = decimal.Zero
		}
		tax := decimal.Zero
		total := subtotal.Add(shipping).Add(tax)

		orderUUID := uuid.New().String()
		reference := orderReference(orderUUID)

		orderId, err := ExecNamedLastId(ctx, rep.DB(), `
			INSERT INTO customer_order
				(uuid, reference, order_status_id, subtotal, shipping_cost, tax_amount, total_price)
			VALUES
				(:uuid, :reference, :statusId, :subtotal, :shippingCost, :taxAmount, :totalPrice)`,
			map[string]any{
				"uuid":         orderUUID,
				"reference":    reference,
				"statusId":     pendingStatus.ID,
				"subtotal":     subtotal,
				"shippingCost": shipping,
				"taxAmount":    tax,
				"totalPrice":   total,
			})
		if err != nil {
			return fmt.Errorf("can't insert order: %w", err)
		}

		rows := make([]map[string]any, 0, len(validation.ValidItems))
		for _, it := range validation.ValidItems {
			rows = append(rows, map[string]any{
				"order_id":      orderId,
				"product_id":    it.ProductID,
				"product_price": it.ProductPrice,
				"product_cost":  it.ProductCost,
				"quantity":      it.Quantity,
			})
		}
		if err := BulkInsert(ctx, rep.DB(), "order_item", rows); err != nil {
			return fmt.Errorf("can't insert order items: %w", err)
		}

		for _, it := range validation.ValidItems {
			err := adjustStock(ctx, rep, it.ProductID, -it.Quantity, entity.StockSourceOrder,
				fmt.Sprintf("order %s", reference))
			if err != nil {
				return fmt.Errorf("can't reduce stock for product %d: %w", it.ProductID, err)
			}
		}

		buyer := orderNew.Buyer
		buyer.OrderId = orderId
		err = ExecNamed(ctx, rep.DB(), `
			INSERT INTO buyer (order_id, first_name, last_name, email, phone)
			VALUES (:orderId, :firstName, :lastName, :email, :phone)`,
			map[string]any{
				"orderId":   orderId,
				"firstName": buyer.FirstName,
				"lastName":  buyer.LastName,
				"email":     strings.ToLower(buyer.Email),
				"phone":     buyer.Phone,
			})
		if err != nil {
			return fmt.Errorf("can't insert buyer: %w", err)
		}

		addr := orderNew.ShippingAddress
		addr.OrderId = orderId
		err = ExecNamed(ctx, rep.DB(), `
			INSERT INTO address
				(order_id, country, state, city, address_line_one, address_line_two, postal_code)
			VALUES
				(:orderId, :country, :state, :city, :addressLineOne, :addressLineTwo, :postalCode)`,
			map[string]any{
				"orderId":        orderId,
				"country":        addr.Country,
				"state":          addr.State,
				"city":           addr.City,
				"addressLineOne": addr.AddressLineOne,
				"addressLineTwo": addr.AddressLineTwo,
				"postalCode":     addr.PostalCode,
			})
		if err != nil {
			return fmt.Errorf("can't insert address: %w", err)
		}

		err = insertOrderStatusHistoryEntry(ctx, rep, orderId, pendingStatus.ID, "system", "order placed")
		if err != nil {
			return fmt.Errorf("can't insert status history: %w", err)
		}

		orderFull, err = fetchOrderFull(ctx, rep, orderId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderFull, nil
}

// orderReference derives the human-facing order reference from the UUID.
func orderReference(orderUUID string) string {
	return "AL-" + strings.ToUpper(strings.ReplaceAll(orderUUID, "-", "")[:10])
}

func getOrderByUUID(ctx context.Context, rep dependency.Repository, orderUUID string) (*entity.Order, error) {
	order, err := QueryNamedOne[entity.Order](ctx, rep.DB(), `
		SELECT id, uuid, reference, placed, modified, order_status_id,
			subtotal, shipping_cost, tax_amount, total_price, delivery_confirmed
		FROM customer_order WHERE uuid = :uuid`,
		map[string]any{"uuid": orderUUID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("can't get order by uuid: %w", err)
	}
	return &order, nil
}

func (ms *MYSQLStore) GetOrderByUUID(ctx context.Context, orderUUID string) (*entity.Order, error) {
	return getOrderByUUID(ctx, ms, orderUUID)
}

func (ms *MYSQLStore) GetOrderById(ctx context.Context, orderId int) (*entity.OrderFull, error) {
	return fetchOrderFull(ctx, ms, orderId)
}

func (ms *MYSQLStore) GetOrderFullByUUID(ctx context.Context, orderUUID string) (*entity.OrderFull, error) {
	order, err := getOrderByUUID(ctx, ms, orderUUID)
	if err != nil {
		return nil, err
	}
	return fetchOrderFull(ctx, ms, order.ID)
}

func (ms *MYSQLStore) GetOrderByReferenceAndEmail(ctx context.Context, reference, email string) (*entity.OrderFull, error) {
	order, err := QueryNamedOne[entity.Order](ctx, ms.DB(), `
		SELECT co.id, co.uuid, co.reference, co.placed, co.modified, co.order_status_id,
			co.subtotal, co.shipping_cost, co.tax_amount, co.total_price, co.delivery_confirmed
		FROM customer_order co
		JOIN buyer b ON co.id = b.order_id
		WHERE co.reference = :reference AND b.email = :email`,
		map[string]any{
			"reference": reference,
			"email":     strings.ToLower(email),
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("can't get order by reference and email: %w", err)
	}
	return fetchOrderFull(ctx, ms, order.ID)
}

func (ms *MYSQLStore) GetOrdersPaged(ctx context.Context, statusId, limit, offset int) ([]entity.Order, int, error) {
	where := ""
	params := map[string]any{"limit": limit, "offset": offset}
	if statusId > 0 {
		where = "WHERE order_status_id = :statusId"
		params["statusId"] = statusId
	}

	count, err := QueryCountNamed(ctx, ms.DB(),
		fmt.Sprintf(`SELECT COUNT(*) FROM customer_order %s`, where), params)
	if err != nil {
		return nil, 0, fmt.Errorf("can't count orders: %w", err)
	}

	orders, err := QueryListNamed[entity.Order](ctx, ms.DB(), fmt.Sprintf(`
		SELECT id, uuid, reference, placed, modified, order_status_id,
			subtotal, shipping_cost, tax_amount, total_price, delivery_confirmed
		FROM customer_order %s
		ORDER BY placed DESC
		LIMIT :limit OFFSET :offset`, where), params)
	if err != nil {
		return nil, 0, fmt.Errorf("can't get orders paged: %w", err)
	}
	return orders, count, nil
}

func fetchOrderFull(ctx context.Context, rep dependency.Repository, orderId int) (*entity.OrderFull, error) {
	order, err := QueryNamedOne[entity.Order](ctx, rep.DB(), `
		SELECT id, uuid, reference, placed, modified, order_status_id,
			subtotal, shipping_cost, tax_amount, total_price, delivery_confirmed
		FROM customer_order WHERE id = :id`,
		map[string]any{"id": orderId})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("can't get order: %w", err)
	}

	items, err := QueryListNamed[entity.OrderItem](ctx, rep.DB(), `
		SELECT oi.id, oi.order_id, oi.product_id, oi.product_price, oi.product_cost,
			oi.quantity, p.name AS product_name, p.slug
		FROM order_item oi
		JOIN product p ON oi.product_id = p.id
		WHERE oi.order_id = :orderId`,
		map[string]any{"orderId": orderId})
	if err != nil {
		return nil, fmt.Errorf("can't get order items: %w", err)
	}

	buyer, err := QueryNamedOne[entity.Buyer](ctx, rep.DB(), `
		SELECT id, order_id, first_name, last_name, email, phone
		FROM buyer WHERE order_id = :orderId`,
		map[string]any{"orderId": orderId})
	if err != nil {
		return nil, fmt.Errorf("can't get buyer: %w", err)
	}

	shipping, err := QueryNamedOne[entity.Address](ctx, rep.DB(), `
		SELECT id, order_id, country, state, city, address_line_one, address_line_two, postal_code
		FROM address WHERE order_id = :orderId`,
		map[string]any{"orderId": orderId})
	if err != nil {
		return nil, fmt.Errorf("can't get shipping address: %w", err)
	}

	history, err := QueryListNamed[entity.OrderStatusHistory](ctx, rep.DB(), `
		SELECT id, order_id, order_status_id, changed_by, notes, changed_at
		FROM order_status_history WHERE order_id = :orderId
		ORDER BY changed_at, id`,
		map[string]any{"orderId": orderId})
	if err != nil {
		return nil, fmt.Errorf("can't get status history: %w", err)
	}

	full := &entity.OrderFull{
		Order:      order,
		OrderItems: items,
		Buyer:      buyer,
		Shipping:   shipping,
		History:    history,
	}

	tracking, err := QueryNamedOne[entity.Tracking](ctx, rep.DB(), `
		SELECT id, created_at, updated_at, order_id, carrier, tracking_code,
			current_location, estimated_delivery
		FROM tracking WHERE order_id = :orderId`,
		map[string]any{"orderId": orderId})
	if err == nil {
		full.Tracking = &tracking
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("can't get tracking: %w", err)
	}

	return full, nil
}

// updateOrderStatusWithValidation updates order status with transition validation.
// Returns error if the status transition is not allowed.
func updateOrderStatusWithValidation(
	ctx context.Context,
	rep dependency.Repository,
	orderId int,
	newStatus entity.OrderStatusName,
	changedBy string,
	notes string,
) error {
	var currentStatusId int
	err := rep.DB().GetContext(ctx, &currentStatusId,
		`SELECT order_status_id FROM customer_order WHERE id = ?`, orderId)
	if err != nil {
		return fmt.Errorf("get current status: %w", err)
	}

	currentStatus, ok := rep.Cache().GetOrderStatusByID(currentStatusId)
	if !ok {
		return fmt.Errorf("unknown current status id %d", currentStatusId)
	}
	newStatusEntry, ok := rep.Cache().GetOrderStatusByName(newStatus)
	if !ok {
		return fmt.Errorf("unknown status %s", newStatus)
	}

	if !isValidStatusTransition(currentStatus.Name, newStatus) {
		return fmt.Errorf("%w: cannot change from %s to %s",
			gerr.ErrInvalidTransition, currentStatus.Name, newStatus)
	}

	err = ExecNamed(ctx, rep.DB(), `
		UPDATE customer_order
		SET order_status_id = :newStatusId,
			modified = CURRENT_TIMESTAMP
		WHERE id = :orderId`,
		map[string]any{
			"orderId":     orderId,
			"newStatusId": newStatusEntry.ID,
		})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	return insertOrderStatusHistoryEntry(ctx, rep, orderId, newStatusEntry.ID, changedBy, notes)
}

// insertOrderStatusHistoryEntry inserts a single entry into order_status_history.
func insertOrderStatusHistoryEntry(ctx context.Context, rep dependency.Repository, orderId int, statusId int, changedBy string, notes string) error {
	query := `
		INSERT INTO order_status_history (order_id, order_status_id, changed_by, notes)
		VALUES (:orderId, :statusId, :changedBy, :notes)`
	return ExecNamed(ctx, rep.DB(), query, map[string]any{
		"orderId":   orderId,
		"statusId":  statusId,
		"changedBy": changedBy,
		"notes":     notes,
	})
}

func (ms *MYSQLStore) UpdateOrderStatus(ctx context.Context, orderUUID string, newStatus entity.OrderStatusName, changedBy, notes string) (*entity.OrderFull, error) {
	var orderFull *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		order, err := getOrderByUUID(ctx, rep, orderUUID)
		if err != nil {
			return err
		}
		if newStatus == entity.Cancelled {
			return fmt.Errorf("use CancelOrder to cancel an order")
		}
		if err := updateOrderStatusWithValidation(ctx, rep, order.ID, newStatus, changedBy, notes); err != nil {
			return err
		}
		orderFull, err = fetchOrderFull(ctx, rep, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderFull, nil
}

func (ms *MYSQLStore) SetTracking(ctx context.Context, orderUUID string, t *entity.TrackingInsert, event *entity.TrackingEvent) (*entity.OrderFull, error) {
	var orderFull *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		order, err := getOrderByUUID(ctx, rep, orderUUID)
		if err != nil {
			return err
		}

		trackingId, err := ExecNamedLastId(ctx, rep.DB(), `
			INSERT INTO tracking (order_id, carrier, tracking_code, current_location, estimated_delivery)
			VALUES (:orderId, :carrier, :trackingCode, :currentLocation, :estimatedDelivery)
			ON DUPLICATE KEY UPDATE
				carrier = VALUES(carrier),
				tracking_code = VALUES(tracking_code),
				current_location = VALUES(current_location),
				estimated_delivery = VALUES(estimated_delivery),
				updated_at = CURRENT_TIMESTAMP,
				id = LAST_INSERT_ID(id)`,
			map[string]any{
				"orderId":           order.ID,
				"carrier":           t.Carrier,
				"trackingCode":      t.TrackingCode,
				"currentLocation":   t.CurrentLocation,
				"estimatedDelivery": t.EstimatedDelivery,
			})
		if err != nil {
			return fmt.Errorf("can't upsert tracking: %w", err)
		}

		if event != nil {
			err = ExecNamed(ctx, rep.DB(), `
				INSERT INTO tracking_event (tracking_id, status, location, description, occurred_at)
				VALUES (:trackingId, :status, :location, :description, :occurredAt)`,
				map[string]any{
					"trackingId":  trackingId,
					"status":      event.Status,
					"location":    event.Location,
					"description": event.Description,
					"occurredAt":  event.OccurredAt,
				})
			if err != nil {
				return fmt.Errorf("can't insert tracking event: %w", err)
			}
		}

		orderFull, err = fetchOrderFull(ctx, rep, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderFull, nil
}

// ConfirmDelivery flips delivery_confirmed on a delivered order. The flag is
// never implied by the delivered status itself; only the buyer sets it.
func (ms *MYSQLStore) ConfirmDelivery(ctx context.Context, orderUUID string) (*entity.OrderFull, error) {
	var orderFull *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		order, err := getOrderByUUID(ctx, rep, orderUUID)
		if err != nil {
			return err
		}

		status, ok := rep.Cache().GetOrderStatusByID(order.OrderStatusID)
		if !ok || status.Name != entity.Delivered {
			return gerr.ErrInvalidTransition
		}

		err = ExecNamed(ctx, rep.DB(), `
			UPDATE customer_order
			SET delivery_confirmed = true, modified = CURRENT_TIMESTAMP
			WHERE id = :orderId`,
			map[string]any{"orderId": order.ID})
		if err != nil {
			return fmt.Errorf("can't confirm delivery: %w", err)
		}

		orderFull, err = fetchOrderFull(ctx, rep, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderFull, nil
}

// CancelOrder cancels the order and restores the reserved stock, writing
// audit entries in the same transaction.
func (ms *MYSQLStore) CancelOrder(ctx context.Context, orderUUID string) (*entity.OrderFull, error) {
	var orderFull *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		order, err := getOrderByUUID(ctx, rep, orderUUID)
		if err != nil {
			return err
		}

		if err := updateOrderStatusWithValidation(ctx, rep, order.ID, entity.Cancelled, "system", "order cancelled"); err != nil {
			return err
		}

		items, err := QueryListNamed[entity.OrderItem](ctx, rep.DB(), `
			SELECT oi.id, oi.order_id, oi.product_id, oi.product_price, oi.product_cost,
				oi.quantity, p.name AS product_name, p.slug
			FROM order_item oi
			JOIN product p ON oi.product_id = p.id
			WHERE oi.order_id = :orderId`,
			map[string]any{"orderId": order.ID})
		if err != nil {
			return fmt.Errorf("can't get order items: %w", err)
		}

		for _, it := range items {
			err := adjustStock(ctx, rep, it.ProductID, it.Quantity, entity.StockSourceOrderCancel,
				fmt.Sprintf("order %s cancelled", order.Reference))
			if err != nil {
				return fmt.Errorf("can't restore stock for product %d: %w", it.ProductID, err)
			}
		}

		orderFull, err = fetchOrderFull(ctx, rep, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderFull, nil
}

func (ms *MYSQLStore) AddRefund(ctx context.Context, orderUUID string, amount decimal.Decimal, reason string) error {
	order, err := getOrderByUUID(ctx, ms, orderUUID)
	if err != nil {
		return err
	}
	err = ExecNamed(ctx, ms.DB(), `
		INSERT INTO order_refund (order_id, amount, reason)
		VALUES (:orderId, :amount, :reason)`,
		map[string]any{
			"orderId": order.ID,
			"amount":  amount,
			"reason":  reason,
		})
	if err != nil {
		return fmt.Errorf("can't add refund: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) AddDiscount(ctx context.Context, orderUUID string, code string, amount decimal.Decimal) error {
	order, err := getOrderByUUID(ctx, ms, orderUUID)
	if err != nil {
		return err
	}
	err = ExecNamed(ctx, ms.DB(), `
		INSERT INTO order_discount (order_id, code, amount)
		VALUES (:orderId, :code, :amount)`,
		map[string]any{
			"orderId": order.ID,
			"code":    code,
			"amount":  amount,
		})
	if err != nil {
		return fmt.Errorf("can't add discount: %w", err)
	}
	return nil
}

// GetOrderSummaries loads flattened orders with per-order refund and discount
// totals plus item lines, for the report aggregator. The range is inclusive
// of from and exclusive of to.
func (ms *MYSQLStore) GetOrderSummaries(ctx context.Context, from, to time.Time) ([]entity.OrderSummary, error) {
	type orderRow struct {
		ID             int             `db:"id"`
		Placed         time.Time       `db:"placed"`
		Status         string          `db:"status"`
		TotalPrice     decimal.Decimal `db:"total_price"`
		ShippingCost   decimal.Decimal `db:"shipping_cost"`
		RefundedAmount decimal.Decimal `db:"refunded_amount"`
		DiscountAmount decimal.Decimal `db:"discount_amount"`
	}
	rows, err := QueryListNamed[orderRow](ctx, ms.DB(), `
		SELECT co.id, co.placed, os.name AS status, co.total_price, co.shipping_cost,
			COALESCE((SELECT SUM(orf.amount) FROM order_refund orf WHERE orf.order_id = co.id), 0) AS refunded_amount,
			COALESCE((SELECT SUM(od.amount) FROM order_discount od WHERE od.order_id = co.id), 0) AS discount_amount
		FROM customer_order co
		JOIN order_status os ON co.order_status_id = os.id
		WHERE co.placed >= :from AND co.placed < :to
		ORDER BY co.placed`,
		map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("can't get order summaries: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	orderIds := make([]int, 0, len(rows))
	for _, r := range rows {
		orderIds = append(orderIds, r.ID)
	}

	type itemRow struct {
		OrderID      int                 `db:"order_id"`
		ProductID    int                 `db:"product_id"`
		ProductPrice decimal.Decimal     `db:"product_price"`
		ProductCost  decimal.NullDecimal `db:"product_cost"`
		Quantity     int                 `db:"quantity"`
	}
	itemRows, err := QueryListNamed[itemRow](ctx, ms.DB(), `
		SELECT order_id, product_id, product_price, product_cost, quantity
		FROM order_item
		WHERE order_id IN (:orderIds)`,
		map[string]any{"orderIds": orderIds})
	if err != nil {
		return nil, fmt.Errorf("can't get order item summaries: %w", err)
	}

	itemsByOrder := make(map[int][]entity.OrderItemSummary, len(rows))
	for _, ir := range itemRows {
		itemsByOrder[ir.OrderID] = append(itemsByOrder[ir.OrderID], entity.OrderItemSummary{
			ProductID:    ir.ProductID,
			ProductPrice: ir.ProductPrice,
			ProductCost:  ir.ProductCost,
			Quantity:     ir.Quantity,
		})
	}

	summaries := make([]entity.OrderSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, entity.OrderSummary{
			ID:             r.ID,
			Placed:         r.Placed,
			Status:         entity.OrderStatusName(r.Status),
			TotalPrice:     r.TotalPrice,
			ShippingCost:   r.ShippingCost,
			RefundedAmount: r.RefundedAmount,
			DiscountAmount: r.DiscountAmount,
			Items:          itemsByOrder[r.ID],
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Placed.Before(summaries[j].Placed) })
	return summaries, nil
}

func (ms *MYSQLStore) GetStuckPendingOrders(ctx context.Context, olderThan time.Time) ([]entity.Order, error) {
	pendingStatus, ok := ms.cache.GetOrderStatusByName(entity.Pending)
	if !ok {
		return nil, fmt.Errorf("pending order status not found in cache")
	}
	orders, err := QueryListNamed[entity.Order](ctx, ms.DB(), `
		SELECT id, uuid, reference, placed, modified, order_status_id,
			subtotal, shipping_cost, tax_amount, total_price, delivery_confirmed
		FROM customer_order
		WHERE order_status_id = :statusId AND placed < :olderThan`,
		map[string]any{
			"statusId":  pendingStatus.ID,
			"olderThan": olderThan,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get stuck pending orders: %w", err)
	}
	return orders, nil
}
