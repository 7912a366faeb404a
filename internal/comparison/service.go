package comparison

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

// Service drives a shopper's comparison set.
type Service interface {
	Get(ctx context.Context, sessionID string) (*DTO, error)
	Add(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error)
	Clear(ctx context.Context, sessionID string) (*DTO, error)
	SetPanel(ctx context.Context, sessionID string, action PanelAction) (*DTO, error)
}

// PanelAction selects a comparison panel visibility transition.
type PanelAction string

const (
	PanelOpen   PanelAction = "open"
	PanelClose  PanelAction = "close"
	PanelToggle PanelAction = "toggle"
)

func (a PanelAction) IsValid() bool {
	switch a {
	case PanelOpen, PanelClose, PanelToggle:
		return true
	}
	return false
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	products  productFinder
	persister StatePersister
}

func NewService(products productFinder, persister StatePersister) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if persister == nil {
		return nil, fmt.Errorf("state persister required")
	}
	return &service{products: products, persister: persister}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*DTO, error) {
	store, err := s.loadStore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toDTO(store), nil
}

// Add resolves the product and inserts it when the capacity and dedup guards
// hold. A rejected insert is not an error; the response carries the unchanged
// set and the caller can inspect canAdd beforehand via Get.
func (s *service) Add(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	store, err := s.loadStore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.Add(ctx, *product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting comparison")
	}
	return toDTO(store), nil
}

func (s *service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error) {
	store, err := s.loadStore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting comparison")
	}
	return toDTO(store), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) (*DTO, error) {
	store, err := s.loadStore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.Clear(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting comparison")
	}
	return toDTO(store), nil
}

func (s *service) SetPanel(ctx context.Context, sessionID string, action PanelAction) (*DTO, error) {
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid panel action")
	}
	store, err := s.loadStore(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case PanelOpen:
		err = store.Open(ctx)
	case PanelClose:
		err = store.Close(ctx)
	case PanelToggle:
		err = store.Toggle(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting comparison")
	}
	return toDTO(store), nil
}

func (s *service) loadStore(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	state, err := s.persister.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading comparison")
	}
	if state == nil {
		state = &State{}
	}
	return NewStore(*state, s.persister, sessionID), nil
}
