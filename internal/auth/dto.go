package auth

import "github.com/technova/storefront-backend/internal/users"

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"fullName" validate:"required,min=1,max=120"`
	ClientIP string `json:"-"`
}

// LoginInput is the credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientIP string `json:"-"`
}

// Result is a successful authentication: a signed access token, the rotating
// refresh token, and the account's public profile.
type Result struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         users.ProfileDTO `json:"user"`
}
