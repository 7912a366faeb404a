package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/pagination"
)

const maxCommentLength = 2000

// Service manages product reviews. One review per user per product; writing
// again replaces the earlier review.
type Service interface {
	Upsert(ctx context.Context, userID uuid.UUID, input UpsertInput) (*DTO, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error)
	GetOwn(ctx context.Context, userID, productID uuid.UUID) (*DTO, error)
}

// UpsertInput is the review payload.
type UpsertInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products productFinder
	users    userFinder
}

// NewService constructs the reviews service.
func NewService(repo *Repository, dbClient *db.Client, products productFinder, users userFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, dbClient: dbClient, products: products, users: users}, nil
}

// Upsert writes the user's review and refreshes the product's denormalized
// rating and count in the same transaction.
func (s *service) Upsert(ctx context.Context, userID uuid.UUID, input UpsertInput) (*DTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if len(input.Comment) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	review := models.Review{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Upsert(tx, &review); err != nil {
			return err
		}
		return s.repo.RefreshProductAggregates(tx, input.ProductID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving review")
	}

	// Re-read after the upsert; on replace the stored row keeps its
	// original id and created_at.
	stored, err := s.repo.FindByProductAndUser(ctx, input.ProductID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading review")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "review missing after write")
	}

	dto := toDTO(*stored, s.authorName(ctx, userID))
	return &dto, nil
}

// Delete removes the user's review and refreshes the product aggregates.
func (s *service) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.repo.Delete(tx, productID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return s.repo.RefreshProductAggregates(tx, productID)
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return coded
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting review")
	}
	return nil
}

// ListByProduct returns the product's reviews newest-first with author names.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	rows, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reviews")
	}

	page, hasMore := pagination.TrimPage(rows, params.Limit)

	ids := make([]uuid.UUID, 0, len(page))
	for _, review := range page {
		ids = append(ids, review.UserID)
	}
	authors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading review authors")
	}
	nameByID := make(map[uuid.UUID]string, len(authors))
	for _, author := range authors {
		nameByID[author.ID] = author.FullName
	}

	result := &ListResult{
		Reviews:     make([]DTO, 0, len(page)),
		Rating:      product.Rating,
		ReviewCount: product.ReviewCount,
	}
	for _, review := range page {
		result.Reviews = append(result.Reviews, toDTO(review, nameByID[review.UserID]))
	}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	return result, nil
}

// GetOwn returns the signed-in user's review of the product, if any.
func (s *service) GetOwn(ctx context.Context, userID, productID uuid.UUID) (*DTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	review, err := s.repo.FindByProductAndUser(ctx, productID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading review")
	}
	if review == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	dto := toDTO(*review, s.authorName(ctx, userID))
	return &dto, nil
}

func (s *service) authorName(ctx context.Context, userID uuid.UUID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.FullName
}
