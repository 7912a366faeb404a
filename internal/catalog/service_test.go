package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/technova/storefront-backend/pkg/db/models"
	dbtypes "github.com/technova/storefront-backend/pkg/db/types"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestListProductsFiltersAndCounts(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	category := seedCategory(t, conn, "Phones", "phones")
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, conn, models.Product{
		Name:       "iphone",
		Brand:      strPtr("Apple"),
		Price:      30_000_000,
		Stock:      4,
		CategoryID: &category.ID,
		CreatedAt:  base,
		Specifications: dbtypes.JSONMap{
			"ram": "8GB",
		},
	})
	seedProduct(t, conn, models.Product{
		Name:      "thinkpad",
		Brand:     strPtr("Lenovo"),
		Price:     20_000_000,
		Stock:     2,
		CreatedAt: base.Add(time.Hour),
	})

	result, err := svc.ListProducts(context.Background(), ListProductsInput{CategorySlug: "phones"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if result.Total != 1 || result.Products[0].Name != "iphone" {
		t.Fatalf("expected the phone only, got %d results", result.Total)
	}
	if result.ActiveFilterCount != 1 {
		t.Fatalf("expected 1 active filter, got %d", result.ActiveFilterCount)
	}
	// facets describe the whole feed, not the filtered subset
	if len(result.Facets.Brands) != 2 {
		t.Fatalf("expected 2 brand facets, got %v", result.Facets.Brands)
	}
}

func TestListProductsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListProducts(context.Background(), ListProductsInput{CategorySlug: "ghosts"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListProductsInvalidPriceRange(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListProducts(context.Background(), ListProductsInput{MinPrice: 100, MaxPrice: 50})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetProductBySlug(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	discount := int64(22_000_000)
	seedProduct(t, conn, models.Product{
		Name:          "galaxy",
		Price:         25_000_000,
		DiscountPrice: &discount,
		Stock:         1,
	})

	dto, err := svc.GetProductBySlug(context.Background(), "galaxy")
	if err != nil {
		t.Fatalf("GetProductBySlug: %v", err)
	}
	if dto.EffectivePrice != discount {
		t.Fatalf("expected effective price %d, got %d", discount, dto.EffectivePrice)
	}

	_, err = svc.GetProductBySlug(context.Background(), "missing")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	_, err = svc.GetProductBySlug(context.Background(), " ")
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
