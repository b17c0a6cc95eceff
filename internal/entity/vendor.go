package entity

import "time"

// Vendor represents the vendor table
type Vendor struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	VendorInsert
}

type VendorInsert struct {
	Name         string `db:"name" valid:"required"`
	ContactEmail string `db:"contact_email" valid:"email,optional"`
	Phone        string `db:"phone"`
	Address      string `db:"address"`
	Notes        string `db:"notes"`
}
