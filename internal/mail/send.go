package mail

import (
	"context"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
)

const (
	OrderCancelled    = "order_cancelled.gohtml"
	OrderConfirmed    = "order_confirmed.gohtml"
	TrackingUpdate    = "tracking_update.gohtml"
	DeliveryConfirmed = "delivery_confirmed.gohtml"
)

// Define a map for template names to subjects
var templateSubjects = map[string]string{
	OrderCancelled:    "Your order has been cancelled",
	OrderConfirmed:    "Your order has been confirmed",
	TrackingUpdate:    "Your order is on its way",
	DeliveryConfirmed: "Thanks for confirming your delivery",
}

// orderEmailData carries the fields the order templates render.
type orderEmailData struct {
	Name         string
	Reference    string
	Total        string
	Carrier      string
	TrackingCode string
}

func orderData(order *entity.OrderFull) orderEmailData {
	data := orderEmailData{
		Name:      fmt.Sprintf("%s %s", order.Buyer.FirstName, order.Buyer.LastName),
		Reference: order.Order.Reference,
		Total:     order.Order.TotalPriceDecimal().StringFixed(2),
	}
	if order.Tracking != nil {
		data.Carrier = order.Tracking.Carrier
		data.TrackingCode = order.Tracking.TrackingCode
	}
	return data
}

// SendOrderConfirmation sends an order confirmation email.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, rep dependency.Repository, to string, order *entity.OrderFull) error {
	if order.Order.Reference == "" {
		return fmt.Errorf("incomplete order details: %+v", order.Order)
	}
	ser, err := m.buildSendEmailRequest(to, OrderConfirmed, orderData(order))
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendOrderCancellation sends an order cancellation email.
func (m *Mailer) SendOrderCancellation(ctx context.Context, rep dependency.Repository, to string, order *entity.OrderFull) error {
	if order.Order.Reference == "" {
		return fmt.Errorf("incomplete order details: %+v", order.Order)
	}
	ser, err := m.buildSendEmailRequest(to, OrderCancelled, orderData(order))
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendTrackingUpdate sends a tracking update email with carrier details.
func (m *Mailer) SendTrackingUpdate(ctx context.Context, rep dependency.Repository, to string, order *entity.OrderFull) error {
	if order.Tracking == nil {
		return fmt.Errorf("order %s has no tracking", order.Order.Reference)
	}
	ser, err := m.buildSendEmailRequest(to, TrackingUpdate, orderData(order))
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendDeliveryConfirmed thanks the buyer after they confirm delivery.
func (m *Mailer) SendDeliveryConfirmed(ctx context.Context, rep dependency.Repository, to string, order *entity.OrderFull) error {
	ser, err := m.buildSendEmailRequest(to, DeliveryConfirmed, orderData(order))
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}
