package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// ProfileDTO is the account shape returned to API clients. The password hash
// never leaves the service layer.
type ProfileDTO struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Phone      *string   `json:"phone,omitempty"`
	AvatarURL  *string   `json:"avatarUrl,omitempty"`
	Address    *string   `json:"address,omitempty"`
	City       *string   `json:"city,omitempty"`
	PostalCode *string   `json:"postalCode,omitempty"`
	Country    *string   `json:"country,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToProfileDTO converts an account row into its public shape.
func ToProfileDTO(user models.User) ProfileDTO {
	return ProfileDTO{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Phone:      user.Phone,
		AvatarURL:  user.AvatarURL,
		Address:    user.Address,
		City:       user.City,
		PostalCode: user.PostalCode,
		Country:    user.Country,
		CreatedAt:  user.CreatedAt,
	}
}
