package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a purchased line at the price charged.
type OrderItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string    `gorm:"column:product_name;not null"`
	ProductImage *string   `gorm:"column:product_image"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Price        int64     `gorm:"column:price;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
