package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
	dbtypes "github.com/technova/storefront-backend/pkg/db/types"
)

// ProductDTO is the catalog product shape returned to API clients.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    *string         `json:"description,omitempty"`
	Brand          *string         `json:"brand,omitempty"`
	Price          int64           `json:"price"`
	OriginalPrice  *int64          `json:"originalPrice,omitempty"`
	DiscountPrice  *int64          `json:"discountPrice,omitempty"`
	EffectivePrice int64           `json:"effectivePrice"`
	ImageURL       *string         `json:"imageUrl,omitempty"`
	Images         []string        `json:"images"`
	Stock          int             `json:"stock"`
	IsFeatured     bool            `json:"isFeatured"`
	IsDeal         bool            `json:"isDeal"`
	Specifications dbtypes.JSONMap `json:"specifications"`
	Rating         float64         `json:"rating"`
	ReviewCount    int             `json:"reviewCount"`
	SoldCount      int             `json:"soldCount"`
	Category       *CategoryDTO    `json:"category,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// CategoryDTO is the category shape returned to API clients.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
}

// Facets lists the distinct attribute values available in the current feed,
// used to build the filter sidebar.
type Facets struct {
	Brands      []string `json:"brands"`
	RAM         []string `json:"ram"`
	Storage     []string `json:"storage"`
	CPU         []string `json:"cpu"`
	ScreenSizes []string `json:"screenSizes"`
}

// ProductListResult is the filtered browse feed plus sidebar metadata.
type ProductListResult struct {
	Products          []ProductDTO `json:"products"`
	Total             int          `json:"total"`
	ActiveFilterCount int          `json:"activeFilterCount"`
	Facets            Facets       `json:"facets"`
}

func toProductDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Brand:          p.Brand,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		DiscountPrice:  p.DiscountPrice,
		EffectivePrice: p.EffectivePrice(),
		ImageURL:       p.ImageURL,
		Images:         p.Images,
		Stock:          p.Stock,
		IsFeatured:     p.IsFeatured,
		IsDeal:         p.IsDeal,
		Specifications: p.Specifications,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		SoldCount:      p.SoldCount,
		CreatedAt:      p.CreatedAt,
	}
	if dto.Images == nil {
		dto.Images = []string{}
	}
	if dto.Specifications == nil {
		dto.Specifications = dbtypes.JSONMap{}
	}
	if p.Category != nil {
		dto.Category = toCategoryDTOPtr(*p.Category)
	}
	return dto
}

func toCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func toCategoryDTOPtr(c models.Category) *CategoryDTO {
	dto := toCategoryDTO(c)
	return &dto
}

func toProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	return dtos
}
