package user

import (
	"time"

	"github.com/wichananm65/storefront/internal/domain/entity"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Mobile   string `json:"mobile" validate:"required,max=20"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Address  string `json:"address" validate:"max=500"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Mobile  string `json:"mobile" validate:"required,max=20"`
	Address string `json:"address" validate:"max=500"`
}

// AccountInput is what the back office sends. An empty Password keeps the
// current hash on update and is rejected on create.
type AccountInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Mobile   string `json:"mobile" validate:"required,max=20"`
	Password string `json:"password" validate:"omitempty,min=6,maxbytes=72"`
	Address  string `json:"address" validate:"max=500"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      entity.User
}
