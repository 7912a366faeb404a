package reviews

import (
	"context"
	"errors"
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

// Upsert writes the user's review of the product inside the caller's
// transaction. A second review from the same user replaces the first, so the
// unique (product_id, user_id) key is never violated.
func (r *Repository) Upsert(tx *gorm.DB, review *models.Review) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return fmt.Errorf("upserting review: %w", err)
	}
	return nil
}

// Delete removes the user's review of the product inside the caller's
// transaction and reports whether a row existed.
func (r *Repository) Delete(tx *gorm.DB, productID, userID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	result := tx.Where("product_id = ? AND user_id = ?", productID, userID).
		Delete(&models.Review{})
	if result.Error != nil {
		return false, fmt.Errorf("deleting review: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// FindByProductAndUser returns the user's review of the product, or nil.
func (r *Repository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding review: %w", err)
	}
	return &review, nil
}

// ListByProduct returns one over-fetched page of the product's reviews
// newest-first. The caller trims the buffer row and derives the next cursor.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
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

	var rows []models.Review
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return rows, nil
}

// RefreshProductAggregates recomputes the product's denormalized rating and
// review count from the reviews table, inside the caller's transaction.
func (r *Repository) RefreshProductAggregates(tx *gorm.DB, productID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	err := tx.Exec(`
		UPDATE products SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = ?)
		WHERE id = ?`,
		productID, productID, productID,
	).Error
	if err != nil {
		return fmt.Errorf("refreshing product aggregates: %w", err)
	}
	return nil
}
