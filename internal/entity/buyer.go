package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Address represents the address table
type Address struct {
	ID int `db:"id"`
	AddressInsert
}

type AddressInsert struct {
	OrderId        int            `db:"order_id"`
	Country        string         `db:"country" valid:"required"`
	State          sql.NullString `db:"state" valid:"-"`
	City           string         `db:"city" valid:"required"`
	AddressLineOne string         `db:"address_line_one" valid:"required"`
	AddressLineTwo sql.NullString `db:"address_line_two" valid:"-"`
	PostalCode     string         `db:"postal_code" valid:"required"`
}

// Buyer represents the buyer table
type Buyer struct {
	ID int `db:"id"`
	BuyerInsert
}

type BuyerInsert struct {
	OrderId   int    `db:"order_id"`
	FirstName string `db:"first_name" valid:"required"`
	LastName  string `db:"last_name" valid:"required"`
	Email     string `db:"email" valid:"required,email"`
	Phone     string `db:"phone" valid:"required"`
}

// Customer is the read model over distinct buyers for the back office.
type Customer struct {
	Email         string          `db:"email"`
	FirstName     string          `db:"first_name"`
	LastName      string          `db:"last_name"`
	OrdersCount   int             `db:"orders_count"`
	LifetimeValue decimal.Decimal `db:"lifetime_value"`
}
