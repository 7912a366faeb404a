package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/technova/storefront-backend/internal/cart"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/db/models"
	"github.com/technova/storefront-backend/pkg/enums"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/logger"
	"github.com/technova/storefront-backend/pkg/outbox"
)

// Service quotes and places orders from a shopper's cart.
type Service interface {
	Quote(ctx context.Context, sessionID string) (*QuoteDTO, error)
	PlaceOrder(ctx context.Context, sessionID string, userID uuid.UUID, input PlaceOrderInput) (*PlacedOrderDTO, error)
}

// PlaceOrderInput carries the validated shipping and payment details.
type PlaceOrderInput struct {
	ShippingName       string
	ShippingEmail      string
	ShippingPhone      string
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string
	PaymentMethod      enums.PaymentMethod
	Notes              *string
}

// QuoteLineDTO is one cart line priced at its current effective unit price.
type QuoteLineDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int64     `json:"lineTotal"`
	InStock   bool      `json:"inStock"`
}

// QuoteDTO previews the order a checkout would create.
type QuoteDTO struct {
	Lines  []QuoteLineDTO `json:"lines"`
	Totals Totals         `json:"totals"`
}

// PlacedOrderDTO is the confirmation returned after checkout.
type PlacedOrderDTO struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	Totals        Totals              `json:"totals"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type cartSlot interface {
	Load(ctx context.Context, slot string) (*cart.State, error)
	Delete(ctx context.Context, slot string) error
}

type stockRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) (bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	dbClient *db.Client
	carts    cartSlot
	products stockRepository
	events   eventEmitter
	cfg      config.CheckoutConfig
	logg     *logger.Logger
}

// NewService constructs the checkout service.
func NewService(dbClient *db.Client, carts cartSlot, products stockRepository, events eventEmitter, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		dbClient: dbClient,
		carts:    carts,
		products: products,
		events:   events,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// Quote reprices the cart against current catalog data. Unlike the cart's own
// subtotal, checkout charges the effective (discounted) unit price.
func (s *service) Quote(ctx context.Context, sessionID string) (*QuoteDTO, error) {
	lines, products, err := s.loadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quoteLines := make([]QuoteLineDTO, 0, len(lines))
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.Product.ID]
		if !ok {
			continue
		}
		unit := product.EffectivePrice()
		quoteLines = append(quoteLines, QuoteLineDTO{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unit,
			Quantity:  line.Quantity,
			LineTotal: unit * int64(line.Quantity),
			InStock:   product.Stock >= line.Quantity,
		})
		priced = append(priced, PricedLine{UnitPrice: unit, Quantity: line.Quantity})
	}

	totals, err := ComputeTotals(priced, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing totals")
	}

	return &QuoteDTO{Lines: quoteLines, Totals: totals}, nil
}

// PlaceOrder validates stock, creates the order and its items, decrements
// stock, and queues the order_created event, all in one transaction. The
// cart slot is cleared after commit.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, userID uuid.UUID, input PlaceOrderInput) (*PlacedOrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validatePlaceOrderInput(input); err != nil {
		return nil, err
	}

	lines, products, err := s.loadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	priced := make([]PricedLine, 0, len(lines))
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.Product.ID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q is no longer available", line.Product.Name))
		}
		if product.Stock < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", product.Name))
		}
		unit := product.EffectivePrice()
		priced = append(priced, PricedLine{UnitPrice: unit, Quantity: line.Quantity})
		items = append(items, models.OrderItem{
			ID:           uuid.New(),
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
			Quantity:     line.Quantity,
			Price:        unit,
		})
	}

	totals, err := ComputeTotals(priced, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing totals")
	}

	orderNumber, err := GenerateOrderNumber(time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
	}

	order := models.Order{
		ID:                 uuid.New(),
		OrderNumber:        orderNumber,
		UserID:             userID,
		Status:             enums.OrderStatusPending,
		PaymentStatus:      enums.PaymentStatusPending,
		PaymentMethod:      input.PaymentMethod,
		Subtotal:           totals.Subtotal,
		ShippingFee:        totals.ShippingFee,
		Tax:                totals.Tax,
		Total:              totals.Total,
		ShippingName:       input.ShippingName,
		ShippingEmail:      input.ShippingEmail,
		ShippingPhone:      input.ShippingPhone,
		ShippingAddress:    input.ShippingAddress,
		ShippingCity:       input.ShippingCity,
		ShippingPostalCode: input.ShippingPostalCode,
		Notes:              input.Notes,
		Items:              items,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range lines {
			ok, err := s.products.DecrementStock(tx, line.Product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", line.Product.Name))
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: outbox.OrderCreatedPayload{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      userID,
				Total:       totals.Total,
				ItemCount:   len(items),
			},
		})
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "placing order")
	}

	// the order is committed; a failed cart cleanup only leaves a stale slot
	if err := s.carts.Delete(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "clearing cart after checkout failed")
	}

	return &PlacedOrderDTO{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Totals:        totals,
		CreatedAt:     order.CreatedAt,
	}, nil
}

func (s *service) loadLines(ctx context.Context, sessionID string) ([]cart.Line, map[uuid.UUID]models.Product, error) {
	if sessionID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	state, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if state == nil || len(state.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(state.Items))
	for _, line := range state.Items {
		ids = append(ids, line.Product.ID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return state.Items, byID, nil
}

func validatePlaceOrderInput(input PlaceOrderInput) error {
	missing := []string{}
	for field, value := range map[string]string{
		"shippingName":    input.ShippingName,
		"shippingEmail":   input.ShippingEmail,
		"shippingPhone":   input.ShippingPhone,
		"shippingAddress": input.ShippingAddress,
		"shippingCity":    input.ShippingCity,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing shipping details").WithDetails(map[string]any{"missing": missing})
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return nil
}
