package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/technova/storefront-backend/internal/cart"
	"github.com/technova/storefront-backend/internal/catalog"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/db/models"
	"github.com/technova/storefront-backend/pkg/enums"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/outbox"
)

type recordingEmitter struct {
	events []outbox.DomainEvent
}

func (r *recordingEmitter) Emit(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		panic("emit outside transaction")
	}
	r.events = append(r.events, event)
	return nil
}

type checkoutFixture struct {
	svc      Service
	client   *db.Client
	carts    *cart.MemoryPersister
	emitter  *recordingEmitter
	products *catalog.Repository
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file::memory:",
	}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Category{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	carts := cart.NewMemoryPersister()
	emitter := &recordingEmitter{}
	products := catalog.NewRepository(client.DB())

	svc, err := NewService(client, carts, products, emitter, testCheckoutConfig(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &checkoutFixture{
		svc:      svc,
		client:   client,
		carts:    carts,
		emitter:  emitter,
		products: products,
	}
}

func (f *checkoutFixture) seedProduct(t *testing.T, name string, price int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		ID:    uuid.New(),
		Name:  name,
		Slug:  name,
		Price: price,
		Stock: stock,
	}
	if err := f.client.DB().Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *checkoutFixture) fillCart(t *testing.T, session string, lines ...cart.Line) {
	t.Helper()
	if err := f.carts.Save(context.Background(), session, cart.State{Items: lines}); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		ShippingName:    "Nguyen Van A",
		ShippingEmail:   "a@example.com",
		ShippingPhone:   "0900000000",
		ShippingAddress: "1 Le Loi",
		ShippingCity:    "Ho Chi Minh",
		PaymentMethod:   enums.PaymentMethodCOD,
	}
}

func TestQuoteUsesEffectivePrices(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(t, "phone", 2_000_000, 5)
	discount := int64(1_500_000)
	f.client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("discount_price", discount)
	product.DiscountPrice = &discount

	f.fillCart(t, "sess", cart.Line{Product: product, Quantity: 2})

	quote, err := f.svc.Quote(context.Background(), "sess")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(quote.Lines))
	}
	if quote.Lines[0].UnitPrice != discount {
		t.Fatalf("quote must charge the effective price, got %d", quote.Lines[0].UnitPrice)
	}
	if quote.Totals.Subtotal != 3_000_000 {
		t.Fatalf("expected subtotal 3,000,000, got %d", quote.Totals.Subtotal)
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.Quote(context.Background(), "sess")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for empty cart, got %v", err)
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(t, "laptop", 6_000_000, 3)
	f.fillCart(t, "sess", cart.Line{Product: product, Quantity: 2})
	userID := uuid.New()

	placed, err := f.svc.PlaceOrder(context.Background(), "sess", userID, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if !strings.HasPrefix(placed.OrderNumber, "TN-") {
		t.Fatalf("unexpected order number %q", placed.OrderNumber)
	}
	if placed.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", placed.Status)
	}
	// 12,000,000 subtotal, free shipping, 10% tax
	if placed.Totals.Total != 13_200_000 {
		t.Fatalf("expected total 13,200,000, got %d", placed.Totals.Total)
	}

	var stored models.Order
	if err := f.client.DB().Preload("Items").First(&stored, "id = ?", placed.OrderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items %+v", stored.Items)
	}

	var reloaded models.Product
	if err := f.client.DB().First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("expected stock decremented to 1, got %d", reloaded.Stock)
	}

	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected one order_created event, got %+v", f.emitter.events)
	}

	// cart slot cleared after commit
	state, err := f.carts.Load(context.Background(), "sess")
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if state != nil {
		t.Fatal("expected cart slot deleted")
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(t, "limited", 1_000_000, 1)
	f.fillCart(t, "sess", cart.Line{Product: product, Quantity: 3})

	_, err := f.svc.PlaceOrder(context.Background(), "sess", uuid.New(), validInput())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// nothing committed
	var count int64
	f.client.DB().Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
	var reloaded models.Product
	if err := f.client.DB().First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("stock must be untouched, got %d", reloaded.Stock)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(t, "thing", 1_000_000, 5)
	f.fillCart(t, "sess", cart.Line{Product: product, Quantity: 1})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.svc.PlaceOrder(context.Background(), "sess", uuid.Nil, validInput())
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("missing shipping fields", func(t *testing.T) {
		input := validInput()
		input.ShippingName = ""
		input.ShippingCity = " "
		_, err := f.svc.PlaceOrder(context.Background(), "sess", uuid.New(), input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("bad payment method", func(t *testing.T) {
		input := validInput()
		input.PaymentMethod = enums.PaymentMethod("crypto")
		_, err := f.svc.PlaceOrder(context.Background(), "sess", uuid.New(), input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestPlaceOrderProductDisappeared(t *testing.T) {
	f := newCheckoutFixture(t)
	ghost := models.Product{ID: uuid.New(), Name: "ghost", Price: 100}
	f.fillCart(t, "sess", cart.Line{Product: ghost, Quantity: 1})

	_, err := f.svc.PlaceOrder(context.Background(), "sess", uuid.New(), validInput())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for vanished product, got %v", err)
	}
}
