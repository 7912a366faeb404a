package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// ItemDTO is one saved product with the summary the wishlist page renders.
type ItemDTO struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Price          int64     `json:"price"`
	DiscountPrice  *int64    `json:"discountPrice,omitempty"`
	EffectivePrice int64     `json:"effectivePrice"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	InStock        bool      `json:"inStock"`
	SavedAt        time.Time `json:"savedAt"`
}

// ListResult is one page of a user's wishlist.
type ListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor *string   `json:"nextCursor,omitempty"`
}

func toItemDTO(item models.WishlistItem, product models.Product) ItemDTO {
	return ItemDTO{
		ProductID:      product.ID,
		Name:           product.Name,
		Slug:           product.Slug,
		Price:          product.Price,
		DiscountPrice:  product.DiscountPrice,
		EffectivePrice: product.EffectivePrice(),
		ImageURL:       product.ImageURL,
		InStock:        product.Stock > 0,
		SavedAt:        item.CreatedAt,
	}
}
