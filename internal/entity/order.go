package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderNew struct {
	Items           []OrderItemInsert `valid:"required"`
	ShippingAddress *AddressInsert    `valid:"required"`
	Buyer           *BuyerInsert      `valid:"required"`
}

type OrderFull struct {
	Order      Order
	OrderItems []OrderItem
	Buyer      Buyer
	Shipping   Address
	Tracking   *Tracking
	History    []OrderStatusHistory
}

// Order represents the customer_order table
type Order struct {
	ID                int             `db:"id"`
	UUID              string          `db:"uuid"`
	Reference         string          `db:"reference"`
	Placed            time.Time       `db:"placed"`
	Modified          time.Time       `db:"modified"`
	OrderStatusID     int             `db:"order_status_id"`
	Subtotal          decimal.Decimal `db:"subtotal"`
	ShippingCost      decimal.Decimal `db:"shipping_cost"`
	TaxAmount         decimal.Decimal `db:"tax_amount"`
	TotalPrice        decimal.Decimal `db:"total_price"`
	DeliveryConfirmed bool            `db:"delivery_confirmed"`
}

func (o *Order) TotalPriceDecimal() decimal.Decimal {
	return o.TotalPrice.Round(2)
}

// OrderItem represents the order_item table. Product name, price and cost are
// snapshotted at checkout so later catalog edits don't rewrite history.
type OrderItem struct {
	ID          int    `db:"id"`
	OrderID     int    `db:"order_id"`
	ProductName string `db:"product_name"`
	Slug        string `db:"slug"`
	OrderItemInsert
}

type OrderItemInsert struct {
	ProductID    int                 `db:"product_id" valid:"required"`
	ProductPrice decimal.Decimal     `db:"product_price"`
	ProductCost  decimal.NullDecimal `db:"product_cost"`
	Quantity     int                 `db:"quantity" valid:"required"`
}

func (oii *OrderItemInsert) ProductPriceDecimal() decimal.Decimal {
	return oii.ProductPrice.Round(2)
}

// LineTotal returns price * quantity for the item.
func (oii *OrderItemInsert) LineTotal() decimal.Decimal {
	return oii.ProductPrice.Mul(decimal.NewFromInt(int64(oii.Quantity))).Round(2)
}

type OrderItemValidation struct {
	ValidItems []OrderItemInsert
	Subtotal   decimal.Decimal
	HasChanged bool
}

func (oiv *OrderItemValidation) SubtotalDecimal() decimal.Decimal {
	return oiv.Subtotal.Round(2)
}

// OrderStatusName is the custom type to enforce enum-like behavior
type OrderStatusName string

func (osn *OrderStatusName) String() string {
	return string(*osn)
}

const (
	Pending        OrderStatusName = "pending"
	Processing     OrderStatusName = "processing"
	Shipped        OrderStatusName = "shipped"
	InTransit      OrderStatusName = "in_transit"
	OutForDelivery OrderStatusName = "out_for_delivery"
	Delivered      OrderStatusName = "delivered"
	Cancelled      OrderStatusName = "cancelled"
)

// ValidOrderStatusNames is a set of valid order status names
var ValidOrderStatusNames = map[OrderStatusName]bool{
	Pending:        true,
	Processing:     true,
	Shipped:        true,
	InTransit:      true,
	OutForDelivery: true,
	Delivered:      true,
	Cancelled:      true,
}

// OrderStatus represents the order_status table
type OrderStatus struct {
	ID   int             `db:"id"`
	Name OrderStatusName `db:"name"`
}

// OrderStatusHistory represents the order_status_history table
type OrderStatusHistory struct {
	ID            int       `db:"id"`
	OrderID       int       `db:"order_id"`
	OrderStatusID int       `db:"order_status_id"`
	ChangedBy     string    `db:"changed_by"`
	Notes         string    `db:"notes"`
	ChangedAt     time.Time `db:"changed_at"`
}

// OrderRefund represents the order_refund table
type OrderRefund struct {
	ID        int             `db:"id"`
	OrderID   int             `db:"order_id"`
	Amount    decimal.Decimal `db:"amount"`
	Reason    string          `db:"reason"`
	CreatedAt time.Time       `db:"created_at"`
}

// OrderDiscount represents the order_discount table
type OrderDiscount struct {
	ID        int             `db:"id"`
	OrderID   int             `db:"order_id"`
	Code      string          `db:"code"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

type OrderBuyer struct {
	Order *Order
	Buyer *Buyer
}
