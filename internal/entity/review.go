package entity

import "time"

// Review represents the review table. A review can only be created once the
// buyer has confirmed delivery on the order.
type Review struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	ReviewInsert
}

type ReviewInsert struct {
	OrderID   int    `db:"order_id" valid:"required"`
	ProductID int    `db:"product_id" valid:"required"`
	Rating    int    `db:"rating" valid:"range(1|5)"`
	Title     string `db:"title"`
	Body      string `db:"body"`
}
