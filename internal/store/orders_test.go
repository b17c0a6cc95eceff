package store

import (
	"context"
	"testing"
	"time"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrderNew(productId, qty int, price int64) *entity.OrderNew {
	return &entity.OrderNew{
		Items: []entity.OrderItemInsert{
			{
				ProductID:    productId,
				ProductPrice: decimal.NewFromInt(price),
				Quantity:     qty,
			},
		},
		ShippingAddress: &entity.AddressInsert{
			Country:        "DE",
			City:           "Berlin",
			AddressLineOne: "Torstrasse 1",
			PostalCode:     "10119",
		},
		Buyer: &entity.BuyerInsert{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+4930123456",
		},
	}
}

func (ms *MYSQLStore) statusName(t *testing.T, statusId int) entity.OrderStatusName {
	status, ok := ms.cache.GetOrderStatusByID(statusId)
	require.True(t, ok)
	return status.Name
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Cable", "cable", 10))
	require.NoError(t, err)

	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 3, 199))
	require.NoError(t, err)

	assert.NotEmpty(t, order.Order.UUID)
	assert.NotEmpty(t, order.Order.Reference)
	assert.Equal(t, entity.Pending, db.statusName(t, order.Order.OrderStatusID))
	assert.False(t, order.Order.DeliveryConfirmed)

	// 3 * 199 = 597, over the free shipping bar
	assert.True(t, order.Order.Subtotal.Equal(decimal.NewFromInt(597)))
	assert.True(t, order.Order.ShippingCost.IsZero())
	assert.True(t, order.Order.TotalPrice.Equal(decimal.NewFromInt(597)))

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 3, order.OrderItems[0].Quantity)
	assert.Equal(t, "ada@example.com", order.Buyer.Email)
	require.Len(t, order.History, 1)

	// stock was reduced with an order audit row
	prd, err := db.Products().GetProductById(ctx, productId)
	require.NoError(t, err)
	assert.Equal(t, 7, prd.Stock)

	changes, err := db.Products().GetStockChanges(ctx, productId, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, string(entity.StockSourceOrder), changes[0].Source)
}

func TestCreateOrderClampsToStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Needle", "needle", 2))
	require.NoError(t, err)

	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 5, 199))
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)

	prd, err := db.Products().GetProductById(ctx, productId)
	require.NoError(t, err)
	assert.Equal(t, 0, prd.Stock)

	// nothing left to sell
	_, err = db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	assert.ErrorIs(t, err, gerr.ErrInsufficientStock)
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Deck", "deck", 5))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	require.NoError(t, err)
	uuid := order.Order.UUID

	// pending can't jump straight to shipped
	_, err = db.Order().UpdateOrderStatus(ctx, uuid, entity.Shipped, "tester", "")
	assert.ErrorIs(t, err, gerr.ErrInvalidTransition)

	for _, status := range []entity.OrderStatusName{
		entity.Processing,
		entity.Shipped,
		entity.InTransit,
		entity.OutForDelivery,
		entity.Delivered,
	} {
		order, err = db.Order().UpdateOrderStatus(ctx, uuid, status, "tester", "")
		require.NoError(t, err)
		assert.Equal(t, status, db.statusName(t, order.Order.OrderStatusID))
	}

	// delivered is terminal
	_, err = db.Order().UpdateOrderStatus(ctx, uuid, entity.Processing, "tester", "")
	assert.ErrorIs(t, err, gerr.ErrInvalidTransition)

	// history has one row per transition plus the initial pending entry
	assert.Len(t, order.History, 6)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Mixer", "mixer", 4))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 4, 199))
	require.NoError(t, err)

	cancelled, err := db.Order().CancelOrder(ctx, order.Order.UUID)
	require.NoError(t, err)
	assert.Equal(t, entity.Cancelled, db.statusName(t, cancelled.Order.OrderStatusID))

	prd, err := db.Products().GetProductById(ctx, productId)
	require.NoError(t, err)
	assert.Equal(t, 4, prd.Stock)

	changes, err := db.Products().GetStockChanges(ctx, productId, 0)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, string(entity.StockSourceOrderCancel), changes[0].Source)

	// cancelled orders can't be cancelled twice
	_, err = db.Order().CancelOrder(ctx, order.Order.UUID)
	assert.ErrorIs(t, err, gerr.ErrInvalidTransition)
}

func TestConfirmDelivery(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Phones", "phones", 5))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	require.NoError(t, err)
	uuid := order.Order.UUID

	// not delivered yet
	_, err = db.Order().ConfirmDelivery(ctx, uuid)
	assert.ErrorIs(t, err, gerr.ErrInvalidTransition)

	for _, status := range []entity.OrderStatusName{
		entity.Processing, entity.Shipped, entity.InTransit,
		entity.OutForDelivery, entity.Delivered,
	} {
		_, err = db.Order().UpdateOrderStatus(ctx, uuid, status, "tester", "")
		require.NoError(t, err)
	}

	confirmed, err := db.Order().ConfirmDelivery(ctx, uuid)
	require.NoError(t, err)
	assert.True(t, confirmed.Order.DeliveryConfirmed)
}

func TestReviewRequiresConfirmedDelivery(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Sub", "sub", 5))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	require.NoError(t, err)
	uuid := order.Order.UUID

	review := &entity.ReviewInsert{
		OrderID:   order.Order.ID,
		ProductID: productId,
		Rating:    5,
		Title:     "Great sub",
		Body:      "Shakes the room.",
	}

	_, err = db.Reviews().AddReview(ctx, review)
	assert.ErrorIs(t, err, gerr.ErrDeliveryNotConfirmed)

	for _, status := range []entity.OrderStatusName{
		entity.Processing, entity.Shipped, entity.InTransit,
		entity.OutForDelivery, entity.Delivered,
	} {
		_, err = db.Order().UpdateOrderStatus(ctx, uuid, status, "tester", "")
		require.NoError(t, err)
	}

	// delivered alone is not enough, the buyer has to confirm
	_, err = db.Reviews().AddReview(ctx, review)
	assert.ErrorIs(t, err, gerr.ErrDeliveryNotConfirmed)

	_, err = db.Order().ConfirmDelivery(ctx, uuid)
	require.NoError(t, err)

	reviewId, err := db.Reviews().AddReview(ctx, review)
	require.NoError(t, err)
	assert.NotZero(t, reviewId)

	// one review per product per order
	_, err = db.Reviews().AddReview(ctx, review)
	assert.ErrorIs(t, err, gerr.ErrReviewAlreadyExists)

	reviews, err := db.Reviews().GetProductReviews(ctx, productId, 10, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestOrderLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Pre", "pre", 5))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	require.NoError(t, err)

	found, err := db.Order().GetOrderByReferenceAndEmail(ctx, order.Order.Reference, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, order.Order.ID, found.Order.ID)

	_, err = db.Order().GetOrderByReferenceAndEmail(ctx, order.Order.Reference, "someone@else.com")
	assert.ErrorIs(t, err, gerr.ErrOrderNotFound)

	_, err = db.Order().GetOrderFullByUUID(ctx, "no-such-uuid")
	assert.ErrorIs(t, err, gerr.ErrOrderNotFound)
}

func TestSetTracking(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Rig", "rig", 5))
	require.NoError(t, err)
	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 1, 199))
	require.NoError(t, err)

	tracked, err := db.Order().SetTracking(ctx, order.Order.UUID, &entity.TrackingInsert{
		Carrier:      "DHL",
		TrackingCode: "JD0123456789",
	}, &entity.TrackingEvent{
		Status:     "accepted",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, tracked.Tracking)
	assert.Equal(t, "DHL", tracked.Tracking.Carrier)

	// second call updates in place
	tracked, err = db.Order().SetTracking(ctx, order.Order.UUID, &entity.TrackingInsert{
		Carrier:      "UPS",
		TrackingCode: "1Z999",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPS", tracked.Tracking.Carrier)
}

func TestGetOrderSummaries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()

	productId, err := db.Products().AddProduct(ctx, testProduct("Case", "case", 10))
	require.NoError(t, err)

	order, err := db.Order().CreateOrder(ctx, testOrderNew(productId, 2, 199))
	require.NoError(t, err)
	err = db.Order().AddRefund(ctx, order.Order.UUID, decimal.NewFromInt(50), "scratched lid")
	require.NoError(t, err)
	err = db.Order().AddDiscount(ctx, order.Order.UUID, "WELCOME10", decimal.NewFromInt(10))
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	summaries, err := db.Order().GetOrderSummaries(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, entity.Pending, s.Status)
	assert.True(t, s.RefundedAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, s.DiscountAmount.Equal(decimal.NewFromInt(10)))
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.True(t, s.Items[0].ProductCost.Valid)
}
