package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/technova/storefront-backend/pkg/db/models"
	"github.com/technova/storefront-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the product into the user's wishlist. Re-adding an already
// saved product is a no-op thanks to the unique (user_id, product_id) key.
func (r *Repository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("adding wishlist item: %w", err)
	}
	return nil
}

// Remove deletes the product from the user's wishlist. Removing a product
// that was never saved is a no-op.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
	if err != nil {
		return fmt.Errorf("removing wishlist item: %w", err)
	}
	return nil
}

// ListByUser returns one over-fetched page of the user's saved items
// newest-first. The caller trims the buffer row and derives the next cursor.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WishlistItem, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("parsing cursor: %w", err)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WishlistItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing wishlist items: %w", err)
	}
	return rows, nil
}

// Contains reports whether the user has saved the product.
func (r *Repository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking wishlist item: %w", err)
	}
	return count > 0, nil
}
