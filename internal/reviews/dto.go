package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// DTO is a product review in API responses. AuthorName comes from the users
// table at read time so renames show up without rewriting reviews.
type DTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	UserID     uuid.UUID `json:"userId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListResult is one page of a product's reviews plus its current aggregates.
type ListResult struct {
	Reviews     []DTO   `json:"reviews"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	NextCursor  *string `json:"nextCursor,omitempty"`
}

func toDTO(review models.Review, authorName string) DTO {
	return DTO{
		ID:         review.ID,
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		AuthorName: authorName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}
