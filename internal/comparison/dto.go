package comparison

import (
	"github.com/google/uuid"

	dbtypes "github.com/technova/storefront-backend/pkg/db/types"
)

// ProductDTO is one compared product with the attributes shown side by side.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Brand          *string         `json:"brand,omitempty"`
	ImageURL       *string         `json:"imageUrl,omitempty"`
	Price          int64           `json:"price"`
	DiscountPrice  *int64          `json:"discountPrice,omitempty"`
	EffectivePrice int64           `json:"effectivePrice"`
	Specifications dbtypes.JSONMap `json:"specifications"`
	Rating         float64         `json:"rating"`
	ReviewCount    int             `json:"reviewCount"`
}

// DTO is the comparison view returned to API clients.
type DTO struct {
	Products []ProductDTO `json:"products"`
	IsOpen   bool         `json:"isOpen"`
	Count    int          `json:"count"`
	Capacity int          `json:"capacity"`
}

func toDTO(store *Store) *DTO {
	snapshot := store.Snapshot()
	products := make([]ProductDTO, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		specs := p.Specifications
		if specs == nil {
			specs = dbtypes.JSONMap{}
		}
		products = append(products, ProductDTO{
			ID:             p.ID,
			Name:           p.Name,
			Slug:           p.Slug,
			Brand:          p.Brand,
			ImageURL:       p.ImageURL,
			Price:          p.Price,
			DiscountPrice:  p.DiscountPrice,
			EffectivePrice: p.EffectivePrice(),
			Specifications: specs,
			Rating:         p.Rating,
			ReviewCount:    p.ReviewCount,
		})
	}
	return &DTO{
		Products: products,
		IsOpen:   snapshot.IsOpen,
		Count:    len(products),
		Capacity: MaxProducts,
	}
}
