package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/db/models"
	"github.com/technova/storefront-backend/pkg/enums"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/outbox"
	"github.com/technova/storefront-backend/pkg/pagination"
)

// Service exposes a shopper's order history.
type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error)
}

type stockRestorer interface {
	RestoreStock(tx *gorm.DB, productID uuid.UUID, quantity int) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products stockRestorer
	events   eventEmitter
}

// NewService constructs the orders service.
func NewService(repo *Repository, dbClient *db.Client, products stockRestorer, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, dbClient: dbClient, products: products, events: events}, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	page, hasMore := pagination.TrimPage(rows, params.Limit)
	result := &ListResult{Orders: make([]DTO, 0, len(page))}
	for _, order := range page {
		result.Orders = append(result.Orders, toDTO(order))
	}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	return result, nil
}

// GetByID loads one order. Another user's orders surface as not found rather
// than forbidden so order ids are not probeable.
func (s *service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.loadOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*order)
	return &dto, nil
}

// Cancel moves a pending order to cancelled, restores the reserved stock, and
// queues the order_cancelled event.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.loadOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %q cannot be cancelled", order.Status))
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.UpdateStatus(tx, order.ID, order.Status, enums.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		for _, item := range order.Items {
			if err := s.products.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: outbox.OrderStatusChangedPayload{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      userID,
				FromStatus:  order.Status,
				ToStatus:    enums.OrderStatusCancelled,
			},
		})
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
	}

	order.Status = enums.OrderStatusCancelled
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) loadOwned(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
