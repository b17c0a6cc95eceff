package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product table
type Product struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	ProductInsert
}

type ProductInsert struct {
	Name        string              `db:"name" valid:"required"`
	Slug        string              `db:"slug" valid:"required"`
	Description string              `db:"description"`
	CategoryID  int                 `db:"category_id" valid:"required"`
	VendorID    sql.NullInt32       `db:"vendor_id"`
	Price       decimal.Decimal     `db:"price" valid:"required"`
	Cost        decimal.NullDecimal `db:"cost"`
	Stock       int                 `db:"stock"`
	Hidden      bool                `db:"hidden"`
}

func (pi *ProductInsert) PriceDecimal() decimal.Decimal {
	return pi.Price.Round(2)
}

// StockChangeSource tags entries in the stock_change audit log.
type StockChangeSource string

const (
	StockSourceAdminAdjust StockChangeSource = "admin_adjust"
	StockSourceOrder       StockChangeSource = "order"
	StockSourceOrderCancel StockChangeSource = "order_cancel"
)

// StockChange represents the stock_change table
type StockChange struct {
	ID        int               `db:"id"`
	ProductID int               `db:"product_id"`
	Delta     int               `db:"delta"`
	Source    StockChangeSource `db:"source"`
	Note      string            `db:"note"`
	CreatedAt time.Time         `db:"created_at"`
}
