package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestMigrationsCoverStorefrontTables(t *testing.T) {
	wantTables := []string{
		"users",
		"categories",
		"products",
		"reviews",
		"orders",
		"order_items",
		"wishlist_items",
		"outbox_events",
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		all.Write(b)
	}

	content := all.String()
	for _, table := range wantTables {
		if !strings.Contains(content, "CREATE TABLE "+table) {
			t.Errorf("no migration creates table %q", table)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Promo Codes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_add_promo_codes.sql") {
		t.Fatalf("unexpected filename %q", base)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration fails validation: %v", err)
	}

	if _, err := CreateSQLMigration(dir, ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}
