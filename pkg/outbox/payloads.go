package outbox

import (
	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/enums"
)

// OrderCreatedPayload is the data section for order_created events.
type OrderCreatedPayload struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	Total       int64     `json:"total"`
	ItemCount   int       `json:"itemCount"`
}

// OrderStatusChangedPayload is the data section for order_status_changed and
// order_cancelled events.
type OrderStatusChangedPayload struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      uuid.UUID         `json:"userId"`
	FromStatus  enums.OrderStatus `json:"fromStatus"`
	ToStatus    enums.OrderStatus `json:"toStatus"`
}
