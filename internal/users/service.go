package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

// Service exposes profile reads and updates for the signed-in shopper.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
}

// UpdateProfileInput carries the updatable profile fields. Nil pointers mean
// "leave unchanged"; a pointer to the empty string clears the field.
type UpdateProfileInput struct {
	FullName   *string `json:"fullName" validate:"omitempty,min=1,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	AvatarURL  *string `json:"avatarUrl" validate:"omitempty,max=500"`
	Address    *string `json:"address" validate:"omitempty,max=300"`
	City       *string `json:"city" validate:"omitempty,max=120"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=120"`
}

type service struct {
	repo *Repository
}

// NewService constructs the users service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := ToProfileDTO(*user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	user, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["phone"] = nilIfEmpty(input.Phone)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = nilIfEmpty(input.AvatarURL)
	}
	if input.Address != nil {
		updates["address"] = nilIfEmpty(input.Address)
	}
	if input.City != nil {
		updates["city"] = nilIfEmpty(input.City)
	}
	if input.PostalCode != nil {
		updates["postal_code"] = nilIfEmpty(input.PostalCode)
	}
	if input.Country != nil {
		updates["country"] = nilIfEmpty(input.Country)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProfile(ctx, user.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile")
		}
		user, err = s.loadActive(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	dto := ToProfileDTO(*user)
	return &dto, nil
}

func (s *service) loadActive(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return user, nil
}

func nilIfEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
