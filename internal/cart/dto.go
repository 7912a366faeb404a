package cart

import (
	"github.com/google/uuid"
)

// LineDTO is one cart line in API responses.
type LineDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int64     `json:"lineTotal"`
}

// DTO is the cart view returned to API clients.
type DTO struct {
	Items      []LineDTO `json:"items"`
	IsOpen     bool      `json:"isOpen"`
	TotalItems int       `json:"totalItems"`
	Subtotal   int64     `json:"subtotal"`
}

func toDTO(store *Store) *DTO {
	snapshot := store.Snapshot()
	items := make([]LineDTO, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, LineDTO{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Slug:      line.Product.Slug,
			ImageURL:  line.Product.ImageURL,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			LineTotal: line.Product.Price * int64(line.Quantity),
		})
	}
	return &DTO{
		Items:      items,
		IsOpen:     snapshot.IsOpen,
		TotalItems: store.TotalItems(),
		Subtotal:   store.Subtotal(),
	}
}
