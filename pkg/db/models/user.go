package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered shopper account.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:users_email_key"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Phone        *string   `gorm:"column:phone"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	Address      *string   `gorm:"column:address"`
	City         *string   `gorm:"column:city"`
	PostalCode   *string   `gorm:"column:postal_code"`
	Country      *string   `gorm:"column:country"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
