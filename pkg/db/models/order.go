package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/enums"
)

// Order is a placed checkout. Monetary fields are VND.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`

	Subtotal    int64 `gorm:"column:subtotal;not null"`
	ShippingFee int64 `gorm:"column:shipping_fee;not null"`
	Tax         int64 `gorm:"column:tax;not null"`
	Total       int64 `gorm:"column:total;not null"`

	ShippingName       string  `gorm:"column:shipping_name;not null"`
	ShippingEmail      string  `gorm:"column:shipping_email;not null"`
	ShippingPhone      string  `gorm:"column:shipping_phone;not null"`
	ShippingAddress    string  `gorm:"column:shipping_address;not null"`
	ShippingCity       string  `gorm:"column:shipping_city;not null"`
	ShippingPostalCode string  `gorm:"column:shipping_postal_code;not null"`
	Notes              *string `gorm:"column:notes"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
