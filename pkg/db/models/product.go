package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/technova/storefront-backend/pkg/db/types"
)

// Product is the canonical catalog listing. Prices are VND.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Slug          string          `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description   *string         `gorm:"column:description"`
	Brand         *string         `gorm:"column:brand"`
	Price         int64           `gorm:"column:price;not null"`
	OriginalPrice *int64          `gorm:"column:original_price"`
	DiscountPrice *int64          `gorm:"column:discount_price"`
	CategoryID    *uuid.UUID      `gorm:"column:category_id;type:uuid;index:products_category_id_idx"`
	ImageURL      *string         `gorm:"column:image_url"`
	Images        pq.StringArray  `gorm:"column:images;type:text[]"`
	Stock         int             `gorm:"column:stock;not null;default:0"`
	IsFeatured    bool            `gorm:"column:is_featured;not null;default:false"`
	IsDeal        bool            `gorm:"column:is_deal;not null;default:false"`
	Specifications dbtypes.JSONMap `gorm:"column:specifications;type:jsonb"`
	Rating        float64         `gorm:"column:rating;not null;default:0"`
	ReviewCount   int             `gorm:"column:review_count;not null;default:0"`
	SoldCount     int             `gorm:"column:sold_count;not null;default:0"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the discount price when set, else the base price.
func (p Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}
