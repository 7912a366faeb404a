package comparison

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

type stubProductFinder struct {
	products map[uuid.UUID]models.Product
}

func (s *stubProductFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func newTestService(t *testing.T, products ...models.Product) Service {
	t.Helper()
	finder := &stubProductFinder{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		finder.products[p.ID] = p
	}
	svc, err := NewService(finder, NewMemoryPersister())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceAddAndCapacityScenario(t *testing.T) {
	products := make([]models.Product, 5)
	for i := range products {
		products[i] = newProduct(string(rune('a' + i)))
	}
	svc := newTestService(t, products...)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		dto, err := svc.Add(ctx, "sess", products[i].ID)
		if err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
		if dto.Count != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, dto.Count)
		}
	}

	dto, err := svc.Add(ctx, "sess", products[4].ID)
	if err != nil {
		t.Fatalf("Add at capacity: %v", err)
	}
	if dto.Count != 4 {
		t.Fatalf("fifth add must be a no-op, got count %d", dto.Count)
	}
}

func TestServiceAddUnknownProduct(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Add(context.Background(), "sess", uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestServiceRemoveClearPanel(t *testing.T) {
	product := newProduct("watch")
	svc := newTestService(t, product)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "sess", product.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}

	dto, err := svc.Remove(ctx, "sess", product.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if dto.Count != 0 {
		t.Fatalf("expected empty set, got %d", dto.Count)
	}

	dto, err = svc.SetPanel(ctx, "sess", PanelOpen)
	if err != nil {
		t.Fatalf("SetPanel: %v", err)
	}
	if !dto.IsOpen {
		t.Fatal("expected panel open")
	}

	dto, err = svc.Clear(ctx, "sess")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if dto.Count != 0 {
		t.Fatalf("expected cleared set, got %d", dto.Count)
	}
}

func TestServiceSessionRequired(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
