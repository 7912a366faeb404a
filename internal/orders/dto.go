package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
	"github.com/technova/storefront-backend/pkg/enums"
)

// ItemDTO is one purchased line as stored at checkout time.
type ItemDTO struct {
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName"`
	ProductImage *string   `json:"productImage,omitempty"`
	Quantity     int       `json:"quantity"`
	Price        int64     `json:"price"`
}

// DTO is an order in API responses.
type DTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Subtotal      int64               `json:"subtotal"`
	ShippingFee   int64               `json:"shippingFee"`
	Tax           int64               `json:"tax"`
	Total         int64               `json:"total"`
	ShippingName  string              `json:"shippingName"`
	ShippingCity  string              `json:"shippingCity"`
	Items         []ItemDTO           `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// ListResult is one page of a user's order history.
type ListResult struct {
	Orders     []DTO   `json:"orders"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

func toDTO(order models.Order) DTO {
	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}
	return DTO{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		Subtotal:      order.Subtotal,
		ShippingFee:   order.ShippingFee,
		Tax:           order.Tax,
		Total:         order.Total,
		ShippingName:  order.ShippingName,
		ShippingCity:  order.ShippingCity,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
