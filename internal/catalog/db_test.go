package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/technova/storefront-backend/pkg/db/models"
)

func newCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

func seedCategory(t *testing.T, conn *gorm.DB, name, slug string) models.Category {
	t.Helper()
	category := models.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func seedProduct(t *testing.T, conn *gorm.DB, p models.Product) models.Product {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = p.Name
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("seed product %s: %v", p.Name, err)
	}
	return p
}
