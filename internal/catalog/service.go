package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

const (
	defaultRailLimit = 8
	maxRailLimit     = 24
)

// Service exposes storefront catalog browsing.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error)
	ListDeals(ctx context.Context, limit int) ([]ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

// ListProductsInput holds raw browse filters from the HTTP layer. Category is
// addressed by slug; the service resolves it against the categories table.
type ListProductsInput struct {
	Query        string
	MinPrice     int64
	MaxPrice     int64
	Brands       []string
	RAM          []string
	Storage      []string
	CPU          []string
	ScreenSizes  []string
	CategorySlug string
	Sort         string
}

type service struct {
	repo     *Repository
	memo     *Memo
	maxPrice int64
}

// NewService constructs the catalog service.
func NewService(repo *Repository, maxPrice int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	return &service{
		repo:     repo,
		memo:     NewMemo(),
		maxPrice: maxPrice,
	}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	criteria, err := s.buildCriteria(ctx, input)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog feed")
	}

	filtered := s.memo.Apply(products, criteria)

	return &ProductListResult{
		Products:          toProductDTOs(filtered),
		Total:             len(filtered),
		ActiveFilterCount: ActiveFilterCount(criteria),
		Facets:            BuildFacets(products),
	}, nil
}

func (s *service) buildCriteria(ctx context.Context, input ListProductsInput) (Criteria, error) {
	criteria := DefaultCriteria()
	criteria.Query = input.Query
	criteria.Sort = ParseSortKey(input.Sort)
	criteria.Brands = input.Brands
	criteria.RAM = input.RAM
	criteria.Storage = input.Storage
	criteria.CPU = input.CPU
	criteria.ScreenSizes = input.ScreenSizes

	if input.MinPrice < 0 || (input.MaxPrice > 0 && input.MaxPrice < input.MinPrice) {
		return Criteria{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid price range")
	}
	criteria.MinPrice = input.MinPrice
	criteria.MaxPrice = s.maxPrice
	if input.MaxPrice > 0 && input.MaxPrice < s.maxPrice {
		criteria.MaxPrice = input.MaxPrice
	}

	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, slug)
		if err != nil {
			return Criteria{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving category")
		}
		if category == nil {
			return Criteria{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		criteria.CategoryIDs = []uuid.UUID{category.ID}
	}

	return criteria, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error) {
	products, err := s.repo.ListFeatured(ctx, normalizeRailLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading featured products")
	}
	return toProductDTOs(products), nil
}

func (s *service) ListDeals(ctx context.Context, limit int) ([]ProductDTO, error) {
	products, err := s.repo.ListDeals(ctx, normalizeRailLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading deals")
	}
	return toProductDTOs(products), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c))
	}
	return dtos, nil
}

func normalizeRailLimit(limit int) int {
	if limit <= 0 {
		return defaultRailLimit
	}
	if limit > maxRailLimit {
		return maxRailLimit
	}
	return limit
}
