package entity

import (
	"database/sql"
	"time"
)

// Tracking represents the tracking table, one row per order.
type Tracking struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	TrackingInsert
}

type TrackingInsert struct {
	OrderID           int            `db:"order_id"`
	Carrier           string         `db:"carrier" valid:"required"`
	TrackingCode      string         `db:"tracking_code" valid:"required"`
	CurrentLocation   sql.NullString `db:"current_location"`
	EstimatedDelivery sql.NullTime   `db:"estimated_delivery"`
}

// TrackingEvent represents the tracking_event table, append-only.
type TrackingEvent struct {
	ID          int            `db:"id"`
	TrackingID  int            `db:"tracking_id"`
	Status      string         `db:"status"`
	Location    sql.NullString `db:"location"`
	Description sql.NullString `db:"description"`
	OccurredAt  time.Time      `db:"occurred_at"`
}
