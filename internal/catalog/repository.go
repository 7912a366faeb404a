package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// Repository reads catalog rows. Writes happen only through checkout's stock
// adjustments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns every in-stock product newest-first. This is the browse
// feed the filter pipeline runs over.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("stock > 0").
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding product by slug: %w", err)
	}
	return &product, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding product: %w", err)
	}
	return &product, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("finding products by ids: %w", err)
	}
	return products, nil
}

func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND stock > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}
	return products, nil
}

// ListDeals returns discounted products flagged for the deals rail.
func (r *Repository) ListDeals(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_deal = ? AND discount_price IS NOT NULL AND stock > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	return products, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding category: %w", err)
	}
	return &category, nil
}

// DecrementStock reduces stock inside the caller's transaction, guarded so it
// never drops below zero. Returns gorm.ErrRecordNotFound semantics via zero
// rows affected, surfaced to the caller as a conflict.
func (r *Repository) DecrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"sold_count": gorm.Expr("sold_count + ?", quantity),
		})
	if result.Error != nil {
		return false, fmt.Errorf("decrementing stock: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// RestoreStock returns quantity to a product when an order is cancelled.
func (r *Repository) RestoreStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"sold_count": gorm.Expr("CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END", quantity, quantity),
		}).Error
	if err != nil {
		return fmt.Errorf("restoring stock: %w", err)
	}
	return nil
}
