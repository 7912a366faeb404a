package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

func TestListActiveSkipsOutOfStock(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)

	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, conn, models.Product{Name: "in-stock", Stock: 3, Price: 100, CreatedAt: base})
	seedProduct(t, conn, models.Product{Name: "sold-out", Stock: 0, Price: 100, CreatedAt: base.Add(time.Hour)})
	seedProduct(t, conn, models.Product{Name: "newest", Stock: 1, Price: 100, CreatedAt: base.Add(2 * time.Hour)})

	products, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 in-stock products, got %d", len(products))
	}
	if products[0].Name != "newest" {
		t.Fatalf("expected newest-first ordering, got %q first", products[0].Name)
	}
}

func TestFindBySlug(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)

	category := seedCategory(t, conn, "Laptops", "laptops")
	seedProduct(t, conn, models.Product{
		Name:       "macbook-air",
		Stock:      5,
		Price:      25_000_000,
		CategoryID: &category.ID,
	})

	product, err := repo.FindBySlug(context.Background(), "macbook-air")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if product == nil {
		t.Fatal("expected product")
	}
	if product.Category == nil || product.Category.Slug != "laptops" {
		t.Fatal("expected category preloaded")
	}

	missing, err := repo.FindBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatalf("FindBySlug missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown slug")
	}
}

func TestListDealsRequiresDiscount(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)

	discount := int64(900)
	seedProduct(t, conn, models.Product{Name: "real-deal", Stock: 5, Price: 1000, IsDeal: true, DiscountPrice: &discount})
	seedProduct(t, conn, models.Product{Name: "flag-only", Stock: 5, Price: 1000, IsDeal: true})
	seedProduct(t, conn, models.Product{Name: "plain", Stock: 5, Price: 1000})

	deals, err := repo.ListDeals(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListDeals: %v", err)
	}
	if len(deals) != 1 || deals[0].Name != "real-deal" {
		t.Fatalf("expected only the discounted deal, got %d rows", len(deals))
	}
}

func TestDecrementStockGuard(t *testing.T) {
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)

	product := seedProduct(t, conn, models.Product{Name: "limited", Stock: 2, Price: 1000})

	ok, err := repo.DecrementStock(conn, product.ID, 2)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement to succeed")
	}

	ok, err = repo.DecrementStock(conn, product.ID, 1)
	if err != nil {
		t.Fatalf("DecrementStock on empty: %v", err)
	}
	if ok {
		t.Fatal("expected decrement to fail once stock is exhausted")
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.Stock)
	}
	if reloaded.SoldCount != 2 {
		t.Fatalf("expected sold count 2, got %d", reloaded.SoldCount)
	}

	if _, err := repo.DecrementStock(nil, uuid.New(), 1); err == nil {
		t.Fatal("expected error without transaction")
	}
}
